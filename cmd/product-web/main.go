package main

import (
	"context"
	"fmt"
	"os"

	"github.com/n9te9/go-graphql-product-web/graphql"
	"github.com/n9te9/go-graphql-product-web/internal/log"
	"github.com/n9te9/go-graphql-product-web/operation"
	"github.com/n9te9/go-graphql-product-web/server"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of product-web",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "product-web v0.1.0")
		},
	}
}

func newInitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default product-web config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.Init(*configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", *configPath)
			return nil
		},
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the product web client",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := server.LoadOption(*configPath)
			if err != nil {
				return err
			}

			logger := log.New(opt.ServiceName, verbosity)
			ctx := log.WithLogger(cmd.Context(), logger)
			return server.Run(ctx, opt, logger)
		},
	}
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "log verbosity, repeat for more")

	return cmd
}

func newCheckCmd(configPath *string) *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the GraphQL documents against the API schema",
		Long: `Parses every query, mutation and fragment the client sends and checks
the selected fields against the API schema. The schema is read from --schema,
or fetched from the configured endpoint with { _service { sdl } } when omitted.
_service is only exposed by federation subgraphs; use --schema for any other API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := server.LoadOption(*configPath)
			if err != nil {
				return err
			}

			sdl, err := loadSDL(cmd.Context(), opt, schemaPath)
			if err != nil {
				return err
			}

			if err := operation.CheckSchema(sdl, operation.All()...); err != nil {
				return err
			}

			for _, doc := range operation.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\t%s\n", doc.Kind, doc.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "SDL file to check against instead of fetching it")

	return cmd
}

func loadSDL(ctx context.Context, opt server.Option, schemaPath string) ([]byte, error) {
	if schemaPath != "" {
		return os.ReadFile(schemaPath)
	}

	sdl, err := graphql.FetchSDL(ctx, opt.Endpoint, nil, opt.Retry)
	if err != nil {
		return nil, fmt.Errorf("the endpoint must expose _service { sdl }; pass --schema to check against a local SDL file: %w", err)
	}
	return []byte(sdl), nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "product-web",
		Short:         "Web client for the product review GraphQL API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", server.DefaultConfigPath, "path to the config file")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd(&configPath))
	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newCheckCmd(&configPath))

	return rootCmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
