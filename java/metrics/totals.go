package metrics

import (
	"cmp"
	"slices"
	"sync"
)

// Failure records a file that could not be analyzed.
type Failure struct {
	File string
	Err  error
}

// Totals merges units from many files. It is safe for concurrent use.
type Totals struct {
	mu        sync.Mutex
	files     int
	packages  map[string]*PackageMetric
	classes   []*ClassMetric
	functions []*FunctionMetric
	failures  []Failure
}

func NewTotals() *Totals {
	return &Totals{packages: map[string]*PackageMetric{}}
}

// Add merges a completely parsed unit. Partial units are recorded as
// failures and contribute nothing else.
func (t *Totals) Add(u *Unit) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.files++
	if u.Partial {
		return
	}
	for name, pkg := range u.Packages {
		total, ok := t.packages[name]
		if !ok {
			total = &PackageMetric{Name: name}
			t.packages[name] = total
		}
		total.Add(pkg)
	}
	t.classes = append(t.classes, u.Classes...)
	t.functions = append(t.functions, u.Functions...)
}

// Fail records that file could not be analyzed.
func (t *Totals) Fail(file string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, Failure{File: file, Err: err})
}

// Report is a consistent, sorted snapshot of the totals.
type Report struct {
	Files     int
	Packages  []*PackageMetric
	Classes   []*ClassMetric
	Functions []*FunctionMetric
	Failures  []Failure
}

// Report returns a snapshot sorted by name, so the result does not depend
// on the order in which units were added.
func (t *Totals) Report() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &Report{
		Files:     t.files,
		Classes:   slices.Clone(t.classes),
		Functions: slices.Clone(t.functions),
		Failures:  slices.Clone(t.failures),
	}
	for _, pkg := range t.packages {
		copied := *pkg
		r.Packages = append(r.Packages, &copied)
	}
	slices.SortFunc(r.Packages, func(a, b *PackageMetric) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortStableFunc(r.Classes, func(a, b *ClassMetric) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortStableFunc(r.Functions, func(a, b *FunctionMetric) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.BeginLine, b.BeginLine))
	})
	slices.SortFunc(r.Failures, func(a, b Failure) int { return cmp.Compare(a.File, b.File) })
	return r
}

// Total sums all packages.
func (r *Report) Total() PackageMetric {
	var sum PackageMetric
	for _, pkg := range r.Packages {
		sum.Add(pkg)
	}
	return sum
}

func AverageCCN(functions []*FunctionMetric) float64 {
	if len(functions) == 0 {
		return 0
	}
	sum := 0
	for _, fn := range functions {
		sum += fn.CCN
	}
	return float64(sum) / float64(len(functions))
}

func AverageNCSS(functions []*FunctionMetric) float64 {
	if len(functions) == 0 {
		return 0
	}
	sum := 0
	for _, fn := range functions {
		sum += fn.NCSS
	}
	return float64(sum) / float64(len(functions))
}
