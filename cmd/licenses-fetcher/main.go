// Package main is the entrypoint for the licenses fetcher function.
package main

import (
	"context"
	"os"

	"github.com/ivms-online/ivms-licenses-service/internal/lambda"
	"github.com/rs/zerolog"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	rt, err := lambda.NewRuntime(context.Background(), lambda.BuildInfo{
		Function:  "licenses-fetcher",
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
	if err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("failed to initialize function")
	}

	lambda.Serve(rt, rt.Licenses.Get)
}
