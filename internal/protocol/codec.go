package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode validates items and renders the complete output document.
// A nil or empty slice renders as [] (or {"results":[]}).
func Encode(items []Item, format Format) ([]byte, error) {
	wire := make([]wireItem, 0, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		w, err := it.toWire()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		wire = append(wire, w)
	}

	var doc any
	switch format {
	case "", FormatArray:
		doc = wire
	case FormatObject:
		doc = wireResults{Results: wire}
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes items and writes the document to w in a single call.
// Nothing is written if encoding fails.
func Write(w io.Writer, items []Item, format Format) error {
	data, err := Encode(items, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// Decode reads a plugin's standard output and returns the items it carries.
// Both the bare array and the {"results": [...]} shapes are accepted.
// Unknown fields and invalid items are rejected.
func Decode(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("plugin produced no output on stdout")
	}

	var wire []wireItem
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields() // Strict parsing

	switch trimmed[0] {
	case '[':
		if err := decoder.Decode(&wire); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	case '{':
		var wrapped wireResults
		if err := decoder.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
		if wrapped.Results == nil {
			return nil, fmt.Errorf("output object missing required field: results")
		}
		wire = wrapped.Results
	default:
		return nil, fmt.Errorf("plugin output is not a JSON array or object")
	}

	if decoder.More() {
		return nil, fmt.Errorf("plugin output has trailing data after the results document")
	}

	items := make([]Item, 0, len(wire))
	for i, w := range wire {
		it, err := w.toItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}
