// Package analyzer runs the metrics parser over many files in parallel
// and merges the results.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/java/parser"
	"github.com/dhamidi/ncss/project"
)

// Result is the outcome for one file. Unit is set even when Err is, in
// which case it is partial or, if the file could not be read, nil.
type Result struct {
	File string
	Unit *metrics.Unit
	Err  error
}

type Analyzer struct {
	filter         Filter
	workers        int
	privateJavadoc bool
	log            commonlog.Logger

	// OnResult, if set, is called for every analyzed file. Calls may come
	// from several goroutines at once.
	OnResult func(Result)
}

func New(p *project.Project) *Analyzer {
	return &Analyzer{
		filter: Filter{
			Root:    p.RootDir,
			Include: p.Config.Include,
			Exclude: p.Config.Exclude,
		},
		workers:        max(p.Config.Workers, 1),
		privateJavadoc: p.Config.PrivateJavadoc,
		log:            commonlog.GetLogger("ncss.analyzer"),
	}
}

// Files expands paths into the Java files selected by the project
// configuration.
func (a *Analyzer) Files(paths []string) ([]string, error) {
	return a.filter.Files(paths)
}

// AnalyzeFile parses a single file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*metrics.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a.AnalyzeSource(ctx, path, src)
}

// AnalyzeSource parses src as the contents of path.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, src []byte) (*metrics.Unit, error) {
	return parser.Parse(ctx, src,
		parser.WithFile(path),
		parser.WithPrivateJavadoc(a.privateJavadoc),
		parser.WithLogger(a.log),
	)
}

// Run analyzes files with a bounded number of workers. A file that fails
// to parse is recorded as a failure in the totals and does not stop the
// others; only cancellation of ctx does.
func (a *Analyzer) Run(ctx context.Context, files []string) (*metrics.Totals, error) {
	totals := metrics.NewTotals()
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			unit, err := a.AnalyzeFile(gctx, file)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				failed.Add(1)
				a.log.Warningf("%s", err)
				totals.Fail(file, err)
			}
			if unit != nil {
				totals.Add(unit)
			}
			if a.OnResult != nil {
				a.OnResult(Result{File: file, Unit: unit, Err: err})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return totals, fmt.Errorf("analyze: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return totals, fmt.Errorf("analyze: %w", err)
	}
	a.log.Infof("analyzed %d files, %d failed", len(files), failed.Load())
	return totals, nil
}
