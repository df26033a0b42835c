package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown diagram format for %q (want .json, .yaml or .yml)", path)
}

// Decode reads one diagram document and validates it.
func Decode(r io.Reader, format Format) (*Diagram, error) {
	var d Diagram

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&d); err != nil {
			return nil, &ValidationError{Reason: "malformed JSON", Err: err}
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			if err == io.EOF {
				return nil, invalid("", "empty document")
			}
			return nil, &ValidationError{Reason: "malformed YAML", Err: err}
		}
	default:
		return nil, fmt.Errorf("unsupported diagram format %q", format)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte, format Format) (*Diagram, error) {
	return Decode(bytes.NewReader(data), format)
}

// Load reads and validates the diagram stored at path.
func Load(path string) (*Diagram, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagram: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}
