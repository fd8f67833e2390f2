package broker

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/xuri/excelize/v2"
)

// Normalizer turns raw export rows into transactions. Rows that cannot
// be normalized are skipped, never fatal; only a file whose format
// cannot be determined is an error.
type Normalizer struct {
	log *slog.Logger
}

func NewNormalizer(log *slog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Parse reads a CSV export, detects its format (unless hint is set) and
// normalizes the data rows.
func (n *Normalizer) Parse(r io.Reader, hint Format) ([]journal.Transaction, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	return n.NormalizeRows(rows, hint)
}

// ParseFile dispatches on the file extension: .xlsx exports go through
// excelize, everything else is treated as CSV.
func (n *Normalizer) ParseFile(path string, hint Format) ([]journal.Transaction, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		rows, err := ReadXLSX(path)
		if err != nil {
			return nil, err
		}
		return n.NormalizeRows(rows, hint)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	return n.Parse(f, hint)
}

// NormalizeRows detects the source format from the header row and
// extracts one transaction per usable data row.
func (n *Normalizer) NormalizeRows(rows [][]string, hint Format) ([]journal.Transaction, error) {
	if len(rows) == 0 {
		return nil, ErrUnknownSource
	}

	format := hint
	if format == FormatUnknown {
		detected, ok := Detect(rows[0])
		if !ok {
			return nil, ErrUnknownSource
		}
		format = detected
	}

	spec, ok := specs[format]
	if !ok {
		return nil, ErrUnknownSource
	}

	cols := resolveColumns(rows[0], spec.cols)

	txs := make([]journal.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		tx, ok := n.normalizeRow(format, spec, cols, row)
		if !ok {
			n.log.Debug("skipping row", slog.Int("row", i+1), slog.String("format", format.String()))
			continue
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

type resolved struct {
	symbol     int
	time       int
	side       int
	qty        int
	price      int
	status     int
	commission int
}

// resolveColumns finds each field's index in the header row, preferring
// an exact title match over a substring one so that e.g. a "Filled"
// quantity column is not shadowed by "Filled Time".
func resolveColumns(header []string, cols columns) resolved {
	return resolved{
		symbol:     findColumn(header, cols.symbol),
		time:       findColumn(header, cols.time),
		side:       findColumn(header, cols.side),
		qty:        findColumn(header, cols.qty),
		price:      findColumn(header, cols.price),
		status:     findColumn(header, cols.status),
		commission: findColumn(header, cols.commission),
	}
}

func findColumn(header []string, name string) int {
	if name == "" {
		return -1
	}

	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), name) {
			return i
		}
	}

	return -1
}

func (n *Normalizer) normalizeRow(format Format, spec formatSpec, cols resolved, row []string) (journal.Transaction, bool) {
	// A present status column must say the order actually filled.
	if status := cell(row, cols.status); cols.status >= 0 && !isFilled(status) {
		return journal.Transaction{}, false
	}

	side, ok := parseSide(cell(row, cols.side))
	if !ok {
		return journal.Transaction{}, false
	}

	symbol := strings.ToUpper(strings.TrimSpace(cell(row, cols.symbol)))
	if symbol == "" {
		return journal.Transaction{}, false
	}

	ts, ok := parseTime(cell(row, cols.time), spec.timeLayouts)
	if !ok {
		return journal.Transaction{}, false
	}

	return journal.Transaction{
		Symbol:     symbol,
		Time:       ts,
		Side:       side,
		Qty:        ParseMoney(cell(row, cols.qty)),
		Price:      ParseMoney(cell(row, cols.price)),
		Commission: ParseMoney(cell(row, cols.commission)),
		Source:     format.String(),
	}, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isFilled(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return strings.Contains(s, "filled") || strings.Contains(s, "executed")
}

// parseSide accepts only the two tokens every supported export shares.
// Anything else (transfers, dividends, option assignments) skips the
// row.
func parseSide(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return journal.SideBuy, true
	case "sell":
		return journal.SideSell, true
	default:
		return "", false
	}
}

func parseTime(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

// ParseMoney parses a numeric export field defensively: currency
// symbols, thousands separators and parenthesized negatives are
// stripped, and anything still unparseable becomes 0.
func ParseMoney(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		return -v
	}
	return v
}

// ReadCSV reads all rows of a CSV export. Exports occasionally carry
// ragged trailing columns, so per-record field counts are not enforced.
func ReadCSV(r io.Reader) ([][]string, error) {
	rdr := csv.NewReader(bufio.NewReader(r))
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	rows, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read export csv: %w", err)
	}

	return rows, nil
}

// ReadXLSX reads all rows of the first sheet of an Excel export.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read export sheet: %w", err)
	}

	return rows, nil
}
