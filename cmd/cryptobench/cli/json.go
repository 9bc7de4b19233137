// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"

	"github.com/alecthomas/chroma/v2/quick"
)

// JSONOutput is embedded in a parameter struct to add a --json flag.
//
//	type showParams struct {
//	    cli.JSONOutput
//	    Dump bool `flag:"dump" desc:"print the stored CBOR in diagnostic notation"`
//	}
//
//	if done, err := params.EmitJSON(w, evaluation); done {
//	    return err
//	}
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result to w when --json is set and reports whether
// it did. Nil slices are written as [].
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, normalizeNilSlice(result))
}

// WriteJSON writes value as indented JSON to w, highlighted when w is a
// terminal.
func WriteJSON(w io.Writer, value any) error {
	return writeJSON(w, value, isTerminal(w))
}

func writeJSON(w io.Writer, value any, highlight bool) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	if highlight {
		if err := quick.Highlight(w, string(encoded), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err = w.Write(encoded)
	return err
}

// normalizeNilSlice turns a nil slice into an empty one of the same
// type so it encodes as [] rather than null.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
