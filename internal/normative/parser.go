package normative

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrNotAWorkbook = errors.New("content is not an xlsx workbook")

// Columns of a normative sheet, in the order used when the header row is not recognized.
var Columns = []string{
	"initial_age_range",
	"final_age_range",
	"raw_score",
	"developmental_score",
	"lower_confidence_interval",
	"upper_confidence_interval",
	"z",
	"standardized",
	"see",
	"information",
}

// Sheet is the normative table of one domain.
type Sheet struct {
	Domain string
	Rows   []model.IdadiNormativeTable
}

// ParseWorkbook reads one normative table per sheet; the sheet name is the domain name. The
// first row of every sheet is a header.
func ParseWorkbook(content []byte) ([]Sheet, error) {
	if !IsExcelFile(content) {
		return nil, ErrNotAWorkbook
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error opening Excel file: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			zap.S().Named("normative").Warnf("Could not read %s sheet: %v", name, err)
			continue
		}
		if len(rows) <= 1 {
			continue
		}

		parsed, err := parseSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Domain: strings.TrimSpace(name), Rows: parsed})
	}
	return sheets, nil
}

func parseSheet(rows [][]string) ([]model.IdadiNormativeTable, error) {
	colMap := buildColumnMap(rows[0])

	var table []model.IdadiNormativeTable
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		r := rowReader{row: row, colMap: colMap}
		entry := model.IdadiNormativeTable{
			InitialAgeRange:         r.int("initial_age_range"),
			FinalAgeRange:           r.int("final_age_range"),
			RawScore:                r.int("raw_score"),
			DevelopmentalScore:      r.float("developmental_score"),
			LowerConfidenceInterval: r.float("lower_confidence_interval"),
			UpperConfidenceInterval: r.float("upper_confidence_interval"),
			Z:                       r.float("z"),
			Standardized:            r.int("standardized"),
			See:                     r.float("see"),
			Information:             r.float("information"),
		}
		if r.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, r.err)
		}
		if entry.InitialAgeRange > entry.FinalAgeRange {
			return nil, fmt.Errorf("row %d: age range %d-%d is inverted", i+2, entry.InitialAgeRange, entry.FinalAgeRange)
		}
		table = append(table, entry)
	}
	return table, nil
}

// buildColumnMap maps the known column names to their index. Unknown headers fall back to the
// positional layout of Columns.
func buildColumnMap(headers []string) map[string]int {
	colMap := make(map[string]int)
	for i, header := range headers {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
		colMap[key] = i
	}
	for _, c := range Columns {
		if _, ok := colMap[c]; !ok {
			return positional()
		}
	}
	return colMap
}

func positional() map[string]int {
	colMap := make(map[string]int, len(Columns))
	for i, c := range Columns {
		colMap[c] = i
	}
	return colMap
}

type rowReader struct {
	row    []string
	colMap map[string]int
	err    error
}

func (r *rowReader) value(key string) string {
	if idx, exists := r.colMap[key]; exists && idx < len(r.row) {
		return strings.TrimSpace(r.row[idx])
	}
	return ""
}

func (r *rowReader) float(key string) float64 {
	v := strings.ReplaceAll(r.value(key), ",", ".")
	if v == "" || r.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = fmt.Errorf("column %s: %q is not a number", key, v)
	}
	return f
}

func (r *rowReader) int(key string) int {
	return int(r.float(key))
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func IsExcelFile(content []byte) bool {
	if len(content) < 2 {
		return false
	}

	if content[0] == 0x50 && content[1] == 0x4B {
		f, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return false
		}
		defer f.Close()
		return true
	}

	return false
}
