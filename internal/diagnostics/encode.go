package diagnostics

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// reportPayload is the stable machine-readable projection of a Report.
// Editor integrations consume this; field names are part of the contract.
type reportPayload struct {
	Path        string        `json:"path" yaml:"path"`
	Items       int           `json:"items" yaml:"items"`
	Errors      int           `json:"errors" yaml:"errors"`
	Diagnostics []diagPayload `json:"diagnostics" yaml:"diagnostics"`
}

type diagPayload struct {
	Severity  string `json:"severity" yaml:"severity"`
	Code      string `json:"code" yaml:"code"`
	Message   string `json:"message" yaml:"message"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	EndColumn int    `json:"end_column" yaml:"end_column"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
}

func payload(reports []*Report) []reportPayload {
	out := make([]reportPayload, 0, len(reports))
	for _, r := range reports {
		p := reportPayload{
			Path:        r.Path,
			Items:       r.ItemCount,
			Errors:      r.ErrorCount(),
			Diagnostics: make([]diagPayload, 0, len(r.Diagnostics)),
		}
		for _, d := range r.Diagnostics {
			p.Diagnostics = append(p.Diagnostics, diagPayload{
				Severity:  d.Severity.String(),
				Code:      d.Code,
				Message:   d.Message,
				Line:      d.Span.StartLine,
				Column:    d.Span.StartColumn,
				EndLine:   d.Span.EndLine,
				EndColumn: d.Span.EndColumn,
				Note:      d.Note,
			})
		}
		out = append(out, p)
	}
	return out
}

// EncodeJSON writes the reports as an indented JSON array.
func EncodeJSON(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload(reports))
}

// EncodeYAML writes the reports as a YAML document list.
func EncodeYAML(w io.Writer, reports []*Report) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(payload(reports))
}
