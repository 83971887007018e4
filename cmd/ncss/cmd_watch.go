package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/ncss/format"
	"github.com/dhamidi/ncss/java/analyzer"
	"github.com/dhamidi/ncss/java/codebase"
	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/java/parser"
)

func newWatchCmd() *cobra.Command {
	var flags projectFlags
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-analyze Java files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			p, err := flags.load(dir)
			if err != nil {
				return err
			}

			c := codebase.New(p.RootDir,
				codebase.WithFilter(&analyzer.Filter{Root: p.RootDir, Include: p.Config.Include, Exclude: p.Config.Exclude}),
				codebase.WithParserOptions(parser.WithPrivateJavadoc(p.Config.PrivateJavadoc)),
			)
			w, err := codebase.NewFileWatcher(c)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Stop()
			w.SetDebounce(debounce)
			w.OnChange = func(ch codebase.Change) {
				printChange(p.Rel(ch.Path), ch.File)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			printSummary(c.Report())
			fmt.Printf("watching %s\n", p.RootDir)

			<-ctx.Done()
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet time after the last file event before re-parsing (0 selects the default)")

	return cmd
}

func printChange(rel string, file *codebase.FileInfo) {
	switch {
	case file == nil:
		fmt.Printf("%s: removed\n", rel)
	case file.ParseErr != nil:
		fmt.Fprintln(os.Stderr, format.Snippet(file.ParseErr, file.Content))
	default:
		u := file.Unit
		fmt.Printf("%s: NCSS %d, %d classes, %d functions, average CCN %.2f\n",
			rel, u.NCSS, len(u.Classes), len(u.Functions), metrics.AverageCCN(u.Functions))
	}
}

func printSummary(r *metrics.Report) {
	total := r.Total()
	fmt.Printf("%d files: NCSS %d, %d classes, %d functions, %d failed\n",
		r.Files, total.NCSS, total.Classes, total.Functions, len(r.Failures))
}
