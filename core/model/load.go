package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadInstance reads an Instance from a JSON or YAML file and validates it.
func LoadInstance(path string) (Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Instance{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeInstance(f, ext)
}

// DecodeInstance decodes an Instance from r in the given format ("yaml",
// "yml" or "json") and validates it.
func DecodeInstance(r io.Reader, format string) (Instance, error) {
	var in Instance
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&in); err != nil {
			return in, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			return in, err
		}
	default:
		return in, fmt.Errorf("unsupported instance format: %s", format)
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// EncodeInstance writes the instance to w in the given format.
func EncodeInstance(w io.Writer, in Instance, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	default:
		return fmt.Errorf("unsupported instance format: %s", format)
	}
}
