package check

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gojust/pkg/config"
	"github.com/walteh/gojust/pkg/lint"
)

type Handler struct {
	configPath string
	path       string
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "check [justfile]",
		Short: "run the external checker over a justfile once and print its diagnostics",
	}

	cmd.Flags().StringVar(&me.configPath, "config", config.DefaultFileName, "path to the tool config file")
	cmd.Args = cobra.MaximumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.path = "justfile"
		if len(args) > 0 {
			me.path = args[0]
		}
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

	content, err := afero.ReadFile(fs, me.path)
	if err != nil {
		return errors.Errorf("reading %q: %w", me.path, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var batch []lint.Record
	sink := lint.SinkFunc(func(ctx context.Context, buffer string, records []lint.Record) {
		batch = records
		wg.Done()
	})

	runner := lint.NewRunner(cfg.CheckCommand, sink, nil)
	defer runner.Close()

	if _, err := runner.Start(ctx, me.path, string(content)); err != nil {
		return errors.Errorf("checking %q: %w", me.path, err)
	}
	wg.Wait()

	for _, rec := range batch {
		fmt.Fprintf(os.Stdout, "%s:%d:%d: %s: %s\n",
			me.path, rec.StartLine, rec.StartCol, rec.Severity, rec.Message)
	}
	if len(batch) > 0 {
		return errors.Errorf("%d problem(s) found", len(batch))
	}
	return nil
}
