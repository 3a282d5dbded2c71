// Package main is the entrypoint for the licenses CLI.
//
// The CLI invokes the deployed license functions by name, the same way any other
// service in the platform does.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"
	"github.com/ivms-online/ivms-licenses-service/internal/invoker"
	"github.com/ivms-online/ivms-licenses-service/internal/logs"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// licenseOperations is implemented by *invoker.Client.
type licenseOperations interface {
	Create(ctx context.Context, req models.CreateLicenseRequest) (string, error)
	Get(ctx context.Context, req models.LicenseKeyRequest) (*models.LicenseResponse, error)
	Delete(ctx context.Context, req models.LicenseKeyRequest) error
	List(ctx context.Context, req models.ListLicensesRequest) (*models.ListLicensesResponse, error)
}

type clientFactory func(ctx context.Context, opts *rootOptions) (licenseOperations, error)

type rootOptions struct {
	functions invoker.Functions
	region    string
	endpoint  string
	timeout   time.Duration
	verbose   bool
}

func main() {
	if err := newRootCmd(newInvokerClient).Execute(); err != nil {
		os.Exit(1)
	}
}

func newInvokerClient(ctx context.Context, opts *rootOptions) (licenseOperations, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awslambda.NewFromConfig(awsCfg, func(o *awslambda.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = &opts.endpoint
		}
	})

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := logs.New(logs.Options{Level: level, Version: Version, Output: os.Stderr})

	return invoker.New(client, opts.functions, logger), nil
}

func newRootCmd(factory clientFactory) *cobra.Command {
	opts := &rootOptions{}
	env := invoker.FunctionsFromEnv()

	rootCmd := &cobra.Command{
		Use:   "licenses-cli",
		Short: "Manage vessel licenses through the deployed functions",
		Long: `licenses-cli invokes the licenses functions (creator, fetcher, deleter, lister)
through the Lambda API and prints their responses as JSON.

Function names default to CREATOR_LAMBDA, FETCHER_LAMBDA, DELETER_LAMBDA and LISTER_LAMBDA.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.functions.Creator, "creator", env.Creator, "creator function name")
	flags.StringVar(&opts.functions.Fetcher, "fetcher", env.Fetcher, "fetcher function name")
	flags.StringVar(&opts.functions.Deleter, "deleter", env.Deleter, "deleter function name")
	flags.StringVar(&opts.functions.Lister, "lister", env.Lister, "lister function name")
	flags.StringVar(&opts.region, "region", "", "AWS region (default: from the AWS configuration chain)")
	flags.StringVar(&opts.endpoint, "endpoint-url", "", "Lambda endpoint override")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of a single command")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log invocations to stderr")

	rootCmd.AddCommand(
		newCreateCmd(opts, factory),
		newGetCmd(opts, factory),
		newDeleteCmd(opts, factory),
		newListCmd(opts, factory),
		newVersionCmd(),
	)

	return rootCmd
}

// withClient runs fn with a client and a context bounded by the command timeout.
func withClient(cmd *cobra.Command, opts *rootOptions, factory clientFactory, fn func(ctx context.Context, client licenseOperations) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	client, err := factory(ctx, opts)
	if err != nil {
		return err
	}
	return fn(ctx, client)
}

type ownerFlags struct {
	customerID string
	vesselID   string
}

func (f *ownerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.customerID, "customer", "", "customer ID (required)")
	cmd.Flags().StringVar(&f.vesselID, "vessel", "", "vessel ID (required)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("vessel")
}

func (f *ownerFlags) parse() (uuid.UUID, uuid.UUID, error) {
	customerID, err := uuid.Parse(f.customerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid customer ID %q: %w", f.customerID, err)
	}
	vesselID, err := uuid.Parse(f.vesselID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid vessel ID %q: %w", f.vesselID, err)
	}
	return customerID, vesselID, nil
}

func newCreateCmd(opts *rootOptions, factory clientFactory) *cobra.Command {
	var (
		owner     ownerFlags
		key       string
		count     uint8
		expiresAt string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace a license",
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, vesselID, err := owner.parse()
			if err != nil {
				return err
			}

			req := models.CreateLicenseRequest{
				CustomerID: &customerID,
				VesselID:   &vesselID,
				LicenseKey: key,
			}
			if cmd.Flags().Changed("count") {
				req.Count = &count
			}
			if expiresAt != "" {
				ts, err := time.Parse(time.RFC3339Nano, expiresAt)
				if err != nil {
					return fmt.Errorf("invalid expiry %q: %w", expiresAt, err)
				}
				req.ExpiresAt = &ts
			}

			return withClient(cmd, opts, factory, func(ctx context.Context, client licenseOperations) error {
				created, err := client.Create(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), created)
			})
		},
	}

	owner.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "license key (required)")
	cmd.Flags().Uint8Var(&count, "count", 0, "number of activations")
	cmd.Flags().StringVar(&expiresAt, "expires-at", "", "expiry as RFC 3339 timestamp with offset")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newGetCmd(opts *rootOptions, factory clientFactory) *cobra.Command {
	var (
		owner ownerFlags
		key   string
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a single license",
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, vesselID, err := owner.parse()
			if err != nil {
				return err
			}

			return withClient(cmd, opts, factory, func(ctx context.Context, client licenseOperations) error {
				license, err := client.Get(ctx, models.LicenseKeyRequest{CustomerID: &customerID, VesselID: &vesselID, LicenseKey: key})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), license)
			})
		},
	}

	owner.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "license key (required)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newDeleteCmd(opts *rootOptions, factory clientFactory) *cobra.Command {
	var (
		owner ownerFlags
		key   string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a license",
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, vesselID, err := owner.parse()
			if err != nil {
				return err
			}

			return withClient(cmd, opts, factory, func(ctx context.Context, client licenseOperations) error {
				return client.Delete(ctx, models.LicenseKeyRequest{CustomerID: &customerID, VesselID: &vesselID, LicenseKey: key})
			})
		},
	}

	owner.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "license key (required)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newListCmd(opts *rootOptions, factory clientFactory) *cobra.Command {
	var (
		owner     ownerFlags
		pageToken string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the licenses of a vessel",
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, vesselID, err := owner.parse()
			if err != nil {
				return err
			}

			req := models.ListLicensesRequest{CustomerID: &customerID, VesselID: &vesselID}
			if pageToken != "" {
				req.PageToken = &pageToken
			}

			return withClient(cmd, opts, factory, func(ctx context.Context, client licenseOperations) error {
				if !all {
					page, err := client.List(ctx, req)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), page)
				}

				licenses := []models.LicenseResponse{}
				for {
					page, err := client.List(ctx, req)
					if err != nil {
						return err
					}
					licenses = append(licenses, page.Licenses...)
					if page.PageToken == nil {
						break
					}
					req.PageToken = page.PageToken
				}
				return printJSON(cmd.OutOrStdout(), models.ListLicensesResponse{Licenses: licenses})
			})
		},
	}

	owner.register(cmd)
	cmd.Flags().StringVar(&pageToken, "page-token", "", "resume after this license key")
	cmd.Flags().BoolVar(&all, "all", false, "follow page tokens until the last page")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "licenses-cli %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var _ licenseOperations = (*invoker.Client)(nil)
