package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/ncss/java/metrics"
)

type JSONEncoder struct {
	w        io.Writer
	sections Sections
	report   *metrics.Report
}

func NewJSONEncoder(w io.Writer, sections Sections) *JSONEncoder {
	return &JSONEncoder{w: w, sections: sections}
}

func (e *JSONEncoder) Encode(report *metrics.Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildReportData(), "", "  ")
}

type jsonReport struct {
	Files     int            `json:"files"`
	Total     jsonPackage    `json:"total"`
	Averages  jsonAverages   `json:"averages"`
	Packages  []jsonPackage  `json:"packages,omitempty"`
	Classes   []jsonClass    `json:"classes,omitempty"`
	Functions []jsonFunction `json:"functions,omitempty"`
	Failures  []jsonFailure  `json:"failures,omitempty"`
}

type jsonAverages struct {
	NCSS float64 `json:"ncss"`
	CCN  float64 `json:"ccn"`
}

type jsonPackage struct {
	Name           string `json:"name,omitempty"`
	NCSS           int    `json:"ncss"`
	Functions      int    `json:"functions"`
	Classes        int    `json:"classes"`
	Javadocs       int    `json:"javadocs"`
	JavadocLines   int    `json:"javadocLines"`
	SingleComments int    `json:"singleComments"`
	MultiComments  int    `json:"multiComments"`
}

type jsonClass struct {
	Name      string `json:"name"`
	NCSS      int    `json:"ncss"`
	Functions int    `json:"functions"`
	Classes   int    `json:"classes"`
	Javadocs  int    `json:"javadocs"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

type jsonFunction struct {
	Name           string `json:"name"`
	NCSS           int    `json:"ncss"`
	CCN            int    `json:"ccn"`
	Javadocs       int    `json:"javadocs"`
	BeginLine      int    `json:"beginLine"`
	EndLine        int    `json:"endLine"`
	LocalClasses   int    `json:"localClasses,omitempty"`
	LocalFunctions int    `json:"localFunctions,omitempty"`
}

type jsonFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func (e *JSONEncoder) buildReportData() jsonReport {
	r := e.report
	if r == nil {
		return jsonReport{}
	}
	data := jsonReport{
		Files: r.Files,
		Total: toJSONPackage(r.Total()),
	}
	data.Averages.NCSS = metrics.AverageNCSS(r.Functions)
	data.Averages.CCN = metrics.AverageCCN(r.Functions)

	if e.sections.Packages {
		for _, p := range r.Packages {
			data.Packages = append(data.Packages, toJSONPackage(*p))
		}
	}
	if e.sections.Classes {
		for _, c := range r.Classes {
			data.Classes = append(data.Classes, jsonClass{
				Name:      c.Name,
				NCSS:      c.NCSS,
				Functions: c.Functions,
				Classes:   c.Classes,
				Javadocs:  c.Javadocs,
				EndLine:   c.EndLine,
				EndColumn: c.EndColumn,
			})
		}
	}
	if e.sections.Functions {
		for _, fn := range r.Functions {
			data.Functions = append(data.Functions, jsonFunction{
				Name:           fn.Name,
				NCSS:           fn.NCSS,
				CCN:            fn.CCN,
				Javadocs:       fn.Javadocs,
				BeginLine:      fn.BeginLine,
				EndLine:        fn.EndLine,
				LocalClasses:   fn.LocalClasses,
				LocalFunctions: fn.LocalFunctions,
			})
		}
	}
	for _, f := range r.Failures {
		data.Failures = append(data.Failures, jsonFailure{File: f.File, Error: f.Err.Error()})
	}
	return data
}

func toJSONPackage(p metrics.PackageMetric) jsonPackage {
	return jsonPackage{
		Name:           p.Name,
		NCSS:           p.NCSS,
		Functions:      p.Functions,
		Classes:        p.Classes,
		Javadocs:       p.Javadocs,
		JavadocLines:   p.JavadocLines,
		SingleComments: p.SingleComments,
		MultiComments:  p.MultiComments,
	}
}
