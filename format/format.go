// Package format renders metrics reports.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/ncss/java/metrics"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(report *metrics.Report) error
}

// Sections selects the tables an encoder writes.
type Sections struct {
	Packages  bool
	Classes   bool
	Functions bool
}

var AllSections = Sections{Packages: true, Classes: true, Functions: true}

// NewEncoder returns the encoder for a format name as used in the
// configuration file.
func NewEncoder(name string, w io.Writer, sections Sections) (Encoder, error) {
	switch name {
	case "text", "":
		return NewTextEncoder(w, sections), nil
	case "json":
		return NewJSONEncoder(w, sections), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}
