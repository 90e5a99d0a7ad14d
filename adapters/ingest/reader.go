package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"datasight/domain/grid"
	"datasight/internal/errors"
)

// FileInfo carries bookkeeping metadata about an ingested file
type FileInfo struct {
	FileName     string `json:"file_name"`
	FileType     string `json:"file_type"`
	FileSize     string `json:"file_size"`
	LastModified string `json:"last_modified"`
}

// Read parses raw file bytes into a TypedGrid plus file metadata.
// Supported extensions are csv, xlsx and xls; anything else fails with
// an unsupported-format error before parsing starts.
func Read(content []byte, filename string) (*grid.TypedGrid, FileInfo, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	var (
		rows     [][]string
		fileType string
		err      error
	)
	switch ext {
	case "csv":
		rows, err = parseCSV(content)
		fileType = "CSV"
	case "xlsx", "xls":
		rows, err = parseExcel(content)
		fileType = "Excel"
	default:
		return nil, FileInfo{}, errors.UnsupportedFormat(ext)
	}
	if err != nil {
		return nil, FileInfo{}, errors.Processing("Error processing file", err)
	}

	var header []string
	var data [][]string
	if len(rows) > 0 {
		header = rows[0]
		data = rows[1:]
	}

	g := grid.Build(header, data)
	log.Printf("[ingest] parsed %s %q: %d rows, %d columns", fileType, filename, g.RowCount(), g.ColumnCount())

	info := FileInfo{
		FileName:     filename,
		FileType:     fileType,
		FileSize:     humanSize(len(content)),
		LastModified: time.Now().Format("2006-01-02 15:04:05"),
	}
	return g, info, nil
}

// parseCSV tries encoding/delimiter combinations in a fixed order
// until one yields a consistent parse: UTF-8 comma, Latin-1 comma,
// UTF-8 semicolon, UTF-8 tab.
func parseCSV(content []byte) ([][]string, error) {
	attempts := []struct {
		latin1 bool
		comma  rune
	}{
		{false, ','},
		{true, ','},
		{false, ';'},
		{false, '\t'},
	}

	var lastErr error
	for _, attempt := range attempts {
		rows, err := decodeCSV(content, attempt.latin1, attempt.comma)
		if err == nil {
			return rows, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func decodeCSV(content []byte, latin1 bool, comma rune) ([][]string, error) {
	var reader io.Reader = bytes.NewReader(content)
	if latin1 {
		reader = charmap.ISO8859_1.NewDecoder().Reader(reader)
	} else if !utf8.Valid(content) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}

	r := csv.NewReader(reader)
	r.Comma = comma
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	return rows, nil
}

// parseExcel reads the first sheet of a workbook
func parseExcel(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// humanSize renders a byte count the way the upload UI displays it
func humanSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
