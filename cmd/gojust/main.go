package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	check "github.com/walteh/gojust/cmd/gojust/check"
	list_recipes "github.com/walteh/gojust/cmd/gojust/list-recipes"
	serve_lsp "github.com/walteh/gojust/cmd/gojust/serve-lsp"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "gojust",
		Short: "editor tooling for justfiles",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	ctx := context.Background()
	rootCmd.PersistentPreRun = func(cmdz *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		cmdz.SetContext(logger.WithContext(cmdz.Context()))
	}

	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand())
	rootCmd.AddCommand(check.NewCheckCommand())
	rootCmd.AddCommand(list_recipes.NewListRecipesCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
