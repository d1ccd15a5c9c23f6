package pkg

import (
	"fmt"
	gio "io"
	"os"

	"github.com/rs/zerolog/log"

	"targetenc/pkg/encoding"
	"targetenc/pkg/io"
	"targetenc/pkg/table"
)

type EncodeParameters struct {
	InputFile   string
	OutputFile  string
	MappingFile string

	Method   encoding.Method
	Encoding encoding.Parameters

	// RestoreOrder writes rows in input order instead of labeled rows first.
	RestoreOrder bool

	// Input and Output replace stdin and stdout when no file is named.
	Input  gio.Reader
	Output gio.Writer
}

type ApplyParameters struct {
	InputFile   string
	OutputFile  string
	MappingFile string

	Input  gio.Reader
	Output gio.Writer
}

// Encode reads a combined labeled/unlabeled table, appends the encoded column
// and writes the result. The fitted mapping, if requested, is saved first so a
// failed save leaves no output behind.
func Encode(params EncodeParameters) error {
	data, err := loadData(params.InputFile, params.Input)
	if err != nil {
		return err
	}

	result, err := encoding.Encode(data, params.Method, params.Encoding)
	if err != nil {
		return fmt.Errorf("error encoding column %s: %w", params.Encoding.Column, err)
	}
	summarize(result).LogMetrics(result.Column)

	if params.MappingFile != "" {
		if err := saveMapping(result.Mapping, params.MappingFile); err != nil {
			return err
		}
	}

	output := result.Table
	if params.RestoreOrder {
		output = result.Restore()
	}
	return writeData(output, params.OutputFile, params.Output)
}

func saveMapping(mapping *encoding.Mapping, mappingFile string) error {
	f, err := os.Create(mappingFile)
	if err != nil {
		return fmt.Errorf("error creating mapping file %s: %w", mappingFile, err)
	}
	defer f.Close()
	if err := io.SaveMapping(mapping, f); err != nil {
		return fmt.Errorf("error saving mapping to %s: %w", mappingFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing mapping file %s: %w", mappingFile, err)
	}
	log.Info().Str("File", mappingFile).Int("Categories", len(mapping.Entries)).Msg("Saved mapping")
	return nil
}

// Apply encodes every row of a table with a previously saved mapping.
func Apply(params ApplyParameters) error {
	mappingFile, err := os.Open(params.MappingFile)
	if err != nil {
		return fmt.Errorf("error opening mapping file %s: %w", params.MappingFile, err)
	}
	defer mappingFile.Close()

	mapping, err := io.LoadMapping(mappingFile)
	if err != nil {
		return fmt.Errorf("error loading mapping from %s: %w", params.MappingFile, err)
	}

	data, err := loadData(params.InputFile, params.Input)
	if err != nil {
		return err
	}

	encoded, err := mapping.Apply(data)
	if err != nil {
		return fmt.Errorf("error applying mapping from %s: %w", params.MappingFile, err)
	}
	values, err := encoded.Column(mapping.Output)
	if err != nil {
		return err
	}
	summary := columnSummary{Rows: len(values), Unlabeled: summarizeValues(values)}
	summary.LogMetrics(mapping.Output)

	return writeData(encoded, params.OutputFile, params.Output)
}

func loadData(inputFile string, input gio.Reader) (*table.Table, error) {
	data, dataErrors, err := io.LoadData(io.DataParameters{DataFile: inputFile, Input: input})
	if err != nil {
		return nil, fmt.Errorf("error loading data from %s: %w", inputFile, err)
	}
	printDataErrors(dataErrors)
	if data.NumRows() == 0 {
		return nil, fmt.Errorf("no data to encode in %s", inputFile)
	}
	return data, nil
}

func writeData(data *table.Table, outputFile string, output gio.Writer) error {
	if outputFile == "" || outputFile == "-" {
		if output == nil {
			output = os.Stdout
		}
		return io.WriteData(data, output)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", outputFile, err)
	}
	defer f.Close()
	if err := io.WriteData(data, f); err != nil {
		return fmt.Errorf("error writing %s: %w", outputFile, err)
	}
	return f.Close()
}
