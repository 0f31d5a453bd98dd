package main

import (
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// writeJSON prints body, highlighted for terminals when color is set.
func writeJSON(w io.Writer, body string, color bool) error {
	if !color {
		_, err := io.WriteString(w, body)
		return err
	}
	if err := quick.Highlight(w, body, "json", "terminal256", "monokai"); err != nil {
		_, err = io.WriteString(w, body)
		return err
	}
	return nil
}
