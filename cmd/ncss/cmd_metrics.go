package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhamidi/ncss/format"
	"github.com/dhamidi/ncss/java/analyzer"
	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/project"
)

// projectFlags are shared by every command that analyzes a tree of files.
type projectFlags struct {
	configFile     string
	include        []string
	exclude        []string
	workers        int
	privateJavadoc bool
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "configuration file (default: nearest "+project.ConfigFileName+")")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "doublestar patterns of files to analyze")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "doublestar patterns of files to skip")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "number of files parsed in parallel")
	cmd.Flags().BoolVar(&f.privateJavadoc, "private-javadoc", false, "count javadoc on private and package-private declarations")
}

// load finds the project around dir and applies the flags on top of its
// configuration.
func (f *projectFlags) load(dir string) (*project.Project, error) {
	var p *project.Project
	var err error
	if f.configFile != "" {
		p, err = project.LoadWithConfig(dir, f.configFile)
	} else {
		p, err = project.LoadFrom(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	p.Config.Merge(&project.Config{
		Include:        f.include,
		Exclude:        f.exclude,
		Workers:        f.workers,
		PrivateJavadoc: f.privateJavadoc,
	})
	return p, nil
}

func newMetricsCmd() *cobra.Command {
	var flags projectFlags
	var outputFormat string
	var sections format.Sections

	cmd := &cobra.Command{
		Use:   "metrics [paths...]",
		Short: "Report NCSS, cyclomatic complexity and javadocs for Java files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			p, err := flags.load(args[0])
			if err != nil {
				return err
			}
			if outputFormat != "" {
				p.Config.Format = outputFormat
			}
			if err := p.Config.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !sections.Packages && !sections.Classes && !sections.Functions {
				sections = format.AllSections
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return runMetrics(ctx, p, args, sections)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (text, json)")
	cmd.Flags().BoolVar(&sections.Packages, "packages", false, "report packages")
	cmd.Flags().BoolVar(&sections.Classes, "classes", false, "report classes")
	cmd.Flags().BoolVar(&sections.Functions, "functions", false, "report functions")

	return cmd
}

func runMetrics(ctx context.Context, p *project.Project, paths []string, sections format.Sections) error {
	a := analyzer.New(p)
	files, err := a.Files(paths)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	totals, err := a.Run(ctx, files)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	report := totals.Report()

	encoder, err := format.NewEncoder(p.Config.Format, os.Stdout, sections)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if len(report.Failures) > 0 {
		printFailures(report.Failures)
		return fmt.Errorf("%d of %d files failed to parse", len(report.Failures), len(files))
	}
	return nil
}

func printFailures(failures []metrics.Failure) {
	for _, f := range failures {
		src, err := os.ReadFile(f.File)
		if err != nil {
			fmt.Fprintln(os.Stderr, f.Err)
			continue
		}
		fmt.Fprintln(os.Stderr, format.Snippet(f.Err, src))
	}
}
