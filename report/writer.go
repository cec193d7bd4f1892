package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const writerBufferSize = 256 * 1024 // 256 KB

// Format selects an output encoding.
type Format string

const (
	XLSX Format = "xlsx"
	TSV  Format = "tsv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{XLSX, TSV, JSON, YAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// WriteFile writes tables to path in the given format.
func WriteFile(path string, format Format, tables ...*Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, format, tables...)
}

// Write encodes tables to w in the given format.
func Write(w io.Writer, format Format, tables ...*Table) error {
	switch format {
	case XLSX:
		return WriteXLSX(w, tables...)
	case TSV:
		return WriteTSV(w, tables...)
	case JSON:
		return WriteJSON(w, tables...)
	case YAML:
		return WriteYAML(w, tables...)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteXLSX writes one worksheet per table.
func WriteXLSX(w io.Writer, tables ...*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		for col, h := range t.Header {
			if err := setCell(f, t.Name, col+1, 1, h); err != nil {
				return err
			}
		}
		for r, row := range t.Rows {
			for col, v := range row {
				if v == nil {
					continue
				}
				if err := setCell(f, t.Name, col+1, r+2, v); err != nil {
					return err
				}
			}
		}
	}
	return f.Write(w)
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

// WriteTSV writes tab-separated tables. Multiple tables are separated by a
// blank line and each is introduced by a "# name" line.
func WriteTSV(w io.Writer, tables ...*Table) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	cw := csv.NewWriter(bw)
	cw.Comma = '\t'

	for i, t := range tables {
		if len(tables) > 1 {
			if i > 0 {
				bw.WriteString("\n")
			}
			fmt.Fprintf(bw, "# %s\n", t.Name)
		}
		if err := cw.Write(t.Header); err != nil {
			return err
		}
		record := make([]string, 0, len(t.Header))
		for _, row := range t.Rows {
			record = record[:0]
			for _, v := range row {
				record = append(record, cellString(v))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSON writes the tables as an indented JSON array.
func WriteJSON(w io.Writer, tables ...*Table) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tables); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteYAML writes the tables as a YAML sequence.
func WriteYAML(w io.Writer, tables ...*Table) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	if err := enc.Encode(tables); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
