package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhamidi/ncss/java/analyzer"
	"github.com/dhamidi/ncss/java/census"
)

func newVerifyCmd() *cobra.Command {
	var flags projectFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "verify [paths...]",
		Short: "Cross-check class and function counts against tree-sitter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			p, err := flags.load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			a := analyzer.New(p)
			files, err := a.Files(args)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			c := census.New()
			defer c.Close()

			mismatches := 0
			for _, file := range files {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("verify: %w", err)
				}
				src, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				unit, err := a.AnalyzeSource(ctx, file, src)
				if err != nil {
					mismatches++
					fmt.Printf("%s: parser failed: %v\n", p.Rel(file), err)
					continue
				}
				cmp, err := c.Compare(ctx, p.Rel(file), src, unit)
				if err != nil {
					mismatches++
					fmt.Println(err)
					continue
				}
				if !cmp.Match() {
					mismatches++
				}
				if !quiet || !cmp.Match() {
					fmt.Println(cmp)
				}
			}

			if mismatches > 0 {
				return fmt.Errorf("%d of %d files disagree", mismatches, len(files))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print files that disagree")

	return cmd
}
