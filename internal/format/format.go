// Package format renders pipeline output: the webhook digest text and
// the CLI's JSON mode.
package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes indented JSON output.
type JSONFormatter struct{}

// Write writes the JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
