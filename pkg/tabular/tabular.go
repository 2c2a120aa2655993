// Package tabular reads and writes simple header-keyed tables as CSV or XLSX.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for anything other than csv or xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat accepts a format name or a file name with extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Record is one data row keyed by normalized header name.
type Record struct {
	Line   int // 1-indexed line in the source, the header being line 1
	Values map[string]string
}

// Get returns the first non-empty value among the given header names.
func (r Record) Get(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(r.Values[NormalizeHeader(n)]); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeHeader lower-cases a header and joins words with underscores, so
// "Phone Number" and "phone_number" are the same column.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

// Read parses the first sheet (or the CSV body) into records. Blank rows are
// skipped.
func Read(r io.Reader, format Format) ([]Record, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := Record{Line: i + 2, Values: make(map[string]string, len(headers))}
		for j, h := range headers {
			if h != "" && j < len(row) {
				rec.Values[h] = row[j]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Writer writes rows in one format. Close must be called to flush.
type Writer interface {
	WriteRow(values []string) error
	Close() error
}

// NewWriter returns a writer that emits header first.
func NewWriter(w io.Writer, format Format, header []string) (Writer, error) {
	var tw Writer
	switch format {
	case FormatCSV:
		tw = &csvWriter{w: csv.NewWriter(w)}
	case FormatXLSX:
		xw, err := newXLSXWriter(w)
		if err != nil {
			return nil, err
		}
		tw = xw
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := tw.WriteRow(header); err != nil {
		return nil, err
	}
	return tw, nil
}

type csvWriter struct {
	w *csv.Writer
}

func (c *csvWriter) WriteRow(values []string) error {
	return c.w.Write(values)
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

type xlsxWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newXLSXWriter(out io.Writer) (*xlsxWriter, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create xlsx stream: %w", err)
	}
	return &xlsxWriter{out: out, file: f, stream: sw}, nil
}

func (x *xlsxWriter) WriteRow(values []string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return x.stream.SetRow(cell, row)
}

func (x *xlsxWriter) Close() error {
	defer x.file.Close()
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if err := x.file.Write(x.out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
