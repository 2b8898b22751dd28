// Package iojson reads and writes the JSON used by the command line
// interface: machine readable command output and the install worker payload.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// errorJSON builds the fallback document written when obj cannot be
// marshaled. json.Marshal is used for escaping.
func errorJSON(msg string, err error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(err.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// WriteWith writes obj as indented JSON to w. A marshal failure is reported
// as a JSON error document on ew.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(ew, errorJSON("marshal output", err))
		if werr != nil {
			return werr
		}
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
