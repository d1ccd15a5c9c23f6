package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"targetenc/pkg/table"
)

type DataParameters struct {
	// DataFile is the CSV file to read; empty or "-" reads from Input.
	DataFile string

	// Input is used when DataFile is empty or "-". Defaults to os.Stdin.
	Input io.Reader

	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

type DataError struct {
	Line  int
	Error string
}

// LoadData reads a delimited file with a header line into a table. Cells keep
// their text as string values, except missing markers ("", NA, NaN, ...) which
// become missing values. Lines with the wrong number of fields are reported as
// DataErrors and skipped.
func LoadData(p DataParameters) (*table.Table, []DataError, error) {
	input, closeInput, err := openInput(p)
	if err != nil {
		return nil, nil, err
	}
	defer closeInput()

	reader := csv.NewReader(input)
	reader.Comma = ','
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}
	reader.FieldsPerRecord = -1

	//First line is expected to be a header
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading data header: %w", err)
	}
	data, err := table.New(header...)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading data header: %w", err)
	}

	var dataErrors []DataError
	row := make([]table.Value, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading data: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			dataErrors = append(dataErrors, DataError{
				Line:  line,
				Error: fmt.Sprintf("expected %d fields, found %d", len(header), len(record)),
			})
			continue
		}
		for i, field := range record {
			row[i] = table.Parse(field)
		}
		if err := data.AppendRow(row); err != nil {
			return nil, nil, err
		}
	}

	return data, dataErrors, nil
}

func openInput(p DataParameters) (io.Reader, func(), error) {
	if p.DataFile == "" || p.DataFile == "-" {
		if p.Input != nil {
			return p.Input, func() {}, nil
		}
		return os.Stdin, func() {}, nil
	}
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	return inputFile, func() { _ = inputFile.Close() }, nil
}

// WriteData writes t as CSV with a header line. String cells are written as
// read and missing values become empty fields.
func WriteData(t *table.Table, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(t.Names()); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	record := make([]string, t.NumColumns())
	for i := 0; i < t.NumRows(); i++ {
		for c, v := range t.Row(i) {
			record[c] = v.Text()
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("error writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error writing data: %w", err)
	}
	return nil
}
