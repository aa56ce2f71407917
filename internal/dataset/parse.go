package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseOptions controls how uploaded bytes are read and how cells are
// interpreted as numbers.
type ParseOptions struct {
	// Delimiter for CSV. If 0, ',' is used.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
}

// DefaultParseOptions reads comma-separated files with auto-detected number locale.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Delimiter: ','}
}

// DelimiterFor picks a delimiter from the file name: tab for .tsv, comma otherwise.
func DelimiterFor(filename string) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	return ','
}

// Parse reads UTF-8 CSV bytes into a Table. The first record is the header.
// Empty input, invalid UTF-8, malformed quoting and rows wider than the
// header fail with *ParseError; short rows are padded with empty cells.
func Parse(data []byte, opt ParseOptions) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Err: ErrEmptyInput}
	}
	if !utf8.Valid(data) {
		return nil, &ParseError{Err: ErrInvalidEncoding}
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = opt.Delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: ErrEmptyInput}
		}
		return nil, &ParseError{Line: lineOf(err), Err: err}
	}
	header = normalizeHeader(header)
	ncol := len(header)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Line: lineOf(err), Err: err}
		}
		if len(rec) > ncol {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{Line: line, Err: fmt.Errorf("expected %d fields, saw %d", ncol, len(rec))}
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		rows = append(rows, rec)
	}
	return newTable(header, rows, opt), nil
}

func lineOf(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

// normalizeHeader names blank headers "Unnamed: i" and suffixes repeats
// as name.1, name.2 so that every column is addressable.
func normalizeHeader(in []string) []string {
	out := make([]string, len(in))
	seen := make(map[string]int, len(in))
	for i, h := range in {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for {
			n, dup := seen[name]
			if !dup {
				break
			}
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", h, n+1)
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {},
	"-NaN": {}, "-nan": {}, "NULL": {}, "null": {}, "None": {}, "<NA>": {},
}

func isBlank(s string) bool {
	return IsMissing(strings.TrimSpace(s))
}

// IsMissing reports whether a cell holds one of the missing-value markers
// ("", "NA", "N/A", "NaN", "null", "None" and similar). The match is exact;
// surrounding whitespace makes the cell a real value.
func IsMissing(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

func parseNumeric(s string, opt ParseOptions) (float64, bool) {
	if isBlank(s) {
		return 0, false
	}
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
