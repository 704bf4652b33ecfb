package serve_lsp

import (
	"context"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gojust/pkg/config"
	"github.com/walteh/gojust/pkg/lsp"
)

type Handler struct {
	configPath string
}

func NewServeLSPCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().StringVar(&me.configPath, "config", config.DefaultFileName, "path to the tool config file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, me.configPath)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	server := lsp.NewServer(ctx, lsp.Options{
		Config: cfg,
		FS:     fs,
	})

	if err := server.Serve(ctx, lsp.NewStdioPipe(os.Stdin, os.Stdout)); err != nil {
		return errors.Errorf("running language server: %w", err)
	}
	return nil
}
