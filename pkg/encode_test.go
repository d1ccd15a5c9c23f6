package pkg

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"targetenc/pkg/encoding"
	"targetenc/pkg/io"
	"targetenc/pkg/table"
)

const loansFile = "../datasets/loans/loans.csv"

func readOutput(t *testing.T, out *bytes.Buffer) *table.Table {
	data, dataErrors, err := io.LoadData(io.DataParameters{Input: out})
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	return data
}

func TestEncode(t *testing.T) {
	p := encoding.DefaultHoldoutParameters("Subprogram", "LoanStatus")
	p.NSplits = 5
	var out bytes.Buffer
	err := Encode(EncodeParameters{
		InputFile: loansFile,
		Method:    encoding.MethodHoldout,
		Encoding:  p,
		Output:    &out,
	})
	require.NoError(t, err)

	data := readOutput(t, &out)
	require.Equal(t, 48, data.NumRows())
	require.Equal(t, []string{"id", "Subprogram", "GrossApproval", "LoanStatus", "train", "Subprogram_hte"}, data.Names())

	// Labeled rows come first, then unlabeled rows.
	flags, err := data.Column("train")
	require.NoError(t, err)
	for i, flag := range flags {
		expected := "False"
		if i < 40 {
			expected = "True"
		}
		require.Equal(t, table.StringValue(expected), flag, "row %d", i)
	}

	// Row 44 holds a subprogram that never occurs in labeled rows.
	ids, err := data.Column("id")
	require.NoError(t, err)
	encoded, err := data.Column("Subprogram_hte")
	require.NoError(t, err)
	for i, id := range ids {
		if id == table.StringValue("44") {
			require.True(t, encoded[i].IsMissing())
		}
	}
}

func TestEncodeRestoreOrderAndApply(t *testing.T) {
	dir := t.TempDir()
	mappingFile := filepath.Join(dir, "subprogram.json")
	outputFile := filepath.Join(dir, "encoded.csv")

	p := encoding.DefaultBayesianParameters("Subprogram", "LoanStatus")
	p.NSplits = 4
	err := Encode(EncodeParameters{
		InputFile:    loansFile,
		OutputFile:   outputFile,
		MappingFile:  mappingFile,
		Method:       encoding.MethodBayesian,
		Encoding:     p,
		RestoreOrder: true,
	})
	require.NoError(t, err)

	data, _, err := io.LoadData(io.DataParameters{DataFile: outputFile})
	require.NoError(t, err)
	ids, err := data.Column("id")
	require.NoError(t, err)
	for i, id := range ids {
		require.Equal(t, table.StringValue(strconv.Itoa(i)), id)
	}
	encoded, err := data.Column("Subprogram_bte")
	require.NoError(t, err)

	var out bytes.Buffer
	err = Apply(ApplyParameters{InputFile: loansFile, MappingFile: mappingFile, Output: &out})
	require.NoError(t, err)
	applied := readOutput(t, &out)
	appliedValues, err := applied.Column("Subprogram_bte")
	require.NoError(t, err)

	// Unlabeled rows were encoded with the same full-set fit that was saved.
	for i := 40; i < 48; i++ {
		require.Equal(t, encoded[i], appliedValues[i], "row %d", i)
	}
	require.True(t, appliedValues[44].IsMissing())
}

func TestEncodeKeepsRawCodes(t *testing.T) {
	lines := []string{
		"zip,y,train",
		"007,1,True",
		"007,1,True",
		"7,0,True",
		"7,0,True",
		"A,1,True",
		"A,0,True",
		"A,1,True",
		"A,0,True",
		"1.50,1,True",
		"1.5,0,True",
		"12345678901234567890,1,True",
		"12345678901234567891,0,True",
		"007,,False",
		"7,,False",
		"12345678901234567890,,False",
	}
	mappingFile := filepath.Join(t.TempDir(), "zip.json")

	p := encoding.DefaultHoldoutParameters("zip", "y")
	p.NSplits = 2
	var out bytes.Buffer
	err := Encode(EncodeParameters{
		MappingFile:  mappingFile,
		Method:       encoding.MethodHoldout,
		Encoding:     p,
		RestoreOrder: true,
		Input:        strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Output:       &out,
	})
	require.NoError(t, err)

	written := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, written, len(lines))
	require.Equal(t, "zip,y,train,zip_hte", written[0])
	for i := 1; i < len(lines); i++ {
		require.True(t, strings.HasPrefix(written[i], lines[i]+","), "row %d: %s", i, written[i])
	}

	// Each unlabeled code is encoded from its own group only.
	require.Equal(t, "007,,False,1", written[13])
	require.Equal(t, "7,,False,0", written[14])
	require.Equal(t, "12345678901234567890,,False,1", written[15])

	f, err := os.Open(mappingFile)
	require.NoError(t, err)
	defer f.Close()
	mapping, err := io.LoadMapping(f)
	require.NoError(t, err)
	require.Len(t, mapping.Entries, 7)
}

func TestEncodeMappingFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	outputFile := filepath.Join(dir, "encoded.csv")

	p := encoding.DefaultHoldoutParameters("Subprogram", "LoanStatus")
	p.NSplits = 5
	err := Encode(EncodeParameters{
		InputFile:   loansFile,
		OutputFile:  outputFile,
		MappingFile: filepath.Join(dir, "missing", "subprogram.json"),
		Method:      encoding.MethodHoldout,
		Encoding:    p,
	})
	require.Error(t, err)
	require.NoFileExists(t, outputFile)
}

func TestEncodeErrors(t *testing.T) {
	p := encoding.DefaultHoldoutParameters("Sector", "LoanStatus")
	err := Encode(EncodeParameters{InputFile: loansFile, Method: encoding.MethodHoldout, Encoding: p, Output: &bytes.Buffer{}})
	require.ErrorIs(t, err, encoding.ErrInput)

	p = encoding.DefaultHoldoutParameters("Subprogram", "LoanStatus")
	p.NSplits = 20
	err = Encode(EncodeParameters{InputFile: loansFile, Method: encoding.MethodHoldout, Encoding: p, Output: &bytes.Buffer{}})
	require.ErrorIs(t, err, encoding.ErrConfiguration)

	err = Apply(ApplyParameters{InputFile: loansFile, MappingFile: filepath.Join(t.TempDir(), "none.json")})
	require.Error(t, err)
}

func TestSummarizeValues(t *testing.T) {
	s := summarizeValues([]table.Value{
		table.FloatValue(0.2), table.MissingValue(), table.FloatValue(0.6), table.FloatValue(0.4),
	})
	require.Equal(t, 3, s.Defined)
	require.Equal(t, 1, s.Missing)
	require.InDelta(t, 0.4, s.Mean, 1e-12)
	require.InDelta(t, 0.2, s.StdDev, 1e-12)
	require.Equal(t, 0.2, s.Min)
	require.Equal(t, 0.6, s.Max)

	single := summarizeValues([]table.Value{table.FloatValue(0.7)})
	require.Equal(t, 0.0, single.StdDev)

	empty := summarizeValues([]table.Value{table.MissingValue()})
	require.Equal(t, 0, empty.Defined)
	require.Equal(t, 1, empty.Missing)
}
