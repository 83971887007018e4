package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dhamidi/ncss/java/metrics"
)

// TextEncoder writes one aligned table per section followed by the
// function averages and the files that failed to parse.
type TextEncoder struct {
	w        io.Writer
	sections Sections
	report   *metrics.Report
}

func NewTextEncoder(w io.Writer, sections Sections) *TextEncoder {
	return &TextEncoder{w: w, sections: sections}
}

func (e *TextEncoder) Encode(report *metrics.Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	r := e.report
	if r == nil {
		return nil, nil
	}

	var blocks []func(io.Writer)
	if e.sections.Packages {
		blocks = append(blocks, e.writePackages)
	}
	if e.sections.Classes {
		blocks = append(blocks, e.writeClasses)
	}
	if e.sections.Functions {
		blocks = append(blocks, e.writeFunctions)
	}
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		block(tw)
		if err := tw.Flush(); err != nil {
			return nil, err
		}
	}

	if len(r.Failures) > 0 {
		if len(blocks) > 0 {
			sb.WriteString("\n")
		}
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "failed\t%s\t%v\n", f.File, f.Err)
		}
	}

	return []byte(sb.String()), nil
}

func (e *TextEncoder) writePackages(w io.Writer) {
	fmt.Fprintln(w, "Nr.\tClasses\tFunctions\tNCSS\tJavadocs\tPackage")
	for i, p := range e.report.Packages {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", i+1, p.Classes, p.Functions, p.NCSS, p.Javadocs, p.Name)
	}
	total := e.report.Total()
	fmt.Fprintf(w, "\t%d\t%d\t%d\t%d\tTotal\n", total.Classes, total.Functions, total.NCSS, total.Javadocs)
	fmt.Fprintf(w, "\nFiles:\t%d\n", e.report.Files)
	fmt.Fprintf(w, "Javadoc lines:\t%d\n", total.JavadocLines)
	fmt.Fprintf(w, "Single-line comments:\t%d\n", total.SingleComments)
	fmt.Fprintf(w, "Multi-line comments:\t%d\n", total.MultiComments)
}

func (e *TextEncoder) writeClasses(w io.Writer) {
	fmt.Fprintln(w, "Nr.\tNCSS\tFunctions\tClasses\tJavadocs\tClass")
	for i, c := range e.report.Classes {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", i+1, c.NCSS, c.Functions, c.Classes, c.Javadocs, c.Name)
	}
}

func (e *TextEncoder) writeFunctions(w io.Writer) {
	fns := e.report.Functions
	fmt.Fprintln(w, "Nr.\tNCSS\tCCN\tJVDC\tFunction")
	for i, fn := range fns {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\n", i+1, fn.NCSS, fn.CCN, fn.Javadocs, fn.Name)
	}
	fmt.Fprintf(w, "\nAverage Function NCSS:\t%.2f\n", metrics.AverageNCSS(fns))
	fmt.Fprintf(w, "Average Function CCN:\t%.2f\n", metrics.AverageCCN(fns))
}
