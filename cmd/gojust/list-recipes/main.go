package list_recipes

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gojust/pkg/complete"
	"github.com/walteh/gojust/pkg/config"
)

type Handler struct {
	configPath string
	dir        string
}

func NewListRecipesCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "list-recipes [dir]",
		Short: "print the recipe names completion would offer for a directory",
	}

	cmd.Flags().StringVar(&me.configPath, "config", config.DefaultFileName, "path to the tool config file")
	cmd.Args = cobra.MaximumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.dir = "."
		if len(args) > 0 {
			me.dir = args[0]
		}
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	cfg, err := config.Load(afero.NewOsFs(), me.configPath)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	provider := complete.NewProvider(afero.NewOsFs(), cfg.ListCommand)
	for _, name := range provider.RecipeNames(ctx, me.dir) {
		fmt.Fprintln(os.Stdout, name)
	}
	return nil
}
