package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inferloop/csvclean/pkg/errors"
)

// missingTokens are the raw values treated as the missing state on load,
// compared case-insensitively after trimming.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// ReadCSV loads CSV bytes into a Table. The first record is the header.
// Cells that parse as numbers become numeric cells, recognized missing
// tokens become missing cells, and everything else stays text. Any
// structural problem (no header, zero columns, ragged rows, bad quoting)
// is a load error that aborts the whole pipeline.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.WrapError(errors.ErrEmptyInput, errors.ErrorTypeLoad, errors.CodeEmptyInput, "input contains no data")
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeLoad, errors.CodeMalformedCSV, "failed to read CSV header")
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, errors.WrapError(errors.ErrZeroColumns, errors.ErrorTypeLoad, errors.CodeZeroColumns, "input has no columns")
	}

	table := NewTable(header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if parseErr, ok := err.(*csv.ParseError); ok && parseErr.Err == csv.ErrFieldCount {
				return nil, errors.WrapError(err, errors.ErrorTypeLoad, errors.CodeRowLengthMismatch,
					fmt.Sprintf("row %d has a different number of fields than the header", parseErr.Line))
			}
			return nil, errors.WrapError(err, errors.ErrorTypeLoad, errors.CodeMalformedCSV, "failed to read CSV record")
		}

		cells := make([]Cell, len(record))
		for i, raw := range record {
			cells[i] = ParseCell(raw)
		}
		table.AppendRow(cells)
	}

	return table, nil
}

// ParseCell converts one raw CSV field into a cell.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if missingTokens[strings.ToLower(trimmed)] {
		return Missing()
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(v)
	}
	return Text(raw)
}
