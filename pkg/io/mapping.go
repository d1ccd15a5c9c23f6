package io

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"targetenc/pkg/encoding"
)

func SaveMapping(m *encoding.Mapping, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("error encoding mapping: %w", err)
	}
	return nil
}

func LoadMapping(input io.Reader) (*encoding.Mapping, error) {
	decoder := json.NewDecoder(input)
	m := encoding.Mapping{}
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding mapping: %w", err)
	}
	if m.Column == "" || m.Output == "" {
		return nil, fmt.Errorf("error decoding mapping: missing column names")
	}
	return &m, nil
}
