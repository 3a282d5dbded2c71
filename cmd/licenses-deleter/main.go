// Package main is the entrypoint for the licenses deleter function.
package main

import (
	"context"
	"os"

	"github.com/ivms-online/ivms-licenses-service/internal/lambda"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
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
		Function:  "licenses-deleter",
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
	if err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("failed to initialize function")
	}

	// A nil *struct{} is returned to the invoker as JSON null.
	lambda.Serve(rt, func(ctx context.Context, req models.LicenseKeyRequest) (*struct{}, error) {
		return nil, rt.Licenses.Delete(ctx, req)
	})
}
