// Package utils contains small helper functions used across the project.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintJSON writes v to w as tab-indented JSON under a label.
func PrintJSON(w io.Writer, label string, v any) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", label, err)
	}

	_, err = fmt.Fprintf(w, "%s: %s\n", label, data)
	return err
}
