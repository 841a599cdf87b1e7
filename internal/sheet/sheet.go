// Package sheet maps heterogeneous NCCI spreadsheet entries into typed rule
// rows. Row 0 of every sheet is a copyright/metadata line, row 1 is the
// header; column resolution is alias-driven because CMS renames headers
// between releases.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/claimcheck/internal/model"
)

const headerRowIndex = 1

// Result carries the typed rows parsed from one entry plus skip metrics.
type Result struct {
	Rules       *model.RuleSet
	RowsParsed  int64
	RowsSkipped int64
}

// Parse normalizes one archive entry (xlsx or delimited text) into rule
// rows for the category. Rows missing required fields, or echoing their own
// header text, are dropped silently: CMS duplicates header rows inside the
// data region of some releases, and surfacing that as an error would fail
// every quarterly ingest.
func Parse(cat model.Category, entryName string, data []byte) (*Result, error) {
	tables, err := loadTables(entryName, data)
	if err != nil {
		return nil, err
	}

	res := &Result{Rules: &model.RuleSet{Kind: cat.Kind, Partition: cat.Partition}}
	for _, table := range tables {
		if len(table) <= headerRowIndex+1 {
			continue
		}
		header := table[headerRowIndex]
		cols, ok := resolveColumns(header, fieldsFor(cat.Kind))
		if !ok {
			// Sheet without the required columns (notes tab, change log).
			continue
		}
		for _, row := range table[headerRowIndex+1:] {
			res.RowsParsed++
			if !appendRow(res.Rules, cat, cols, header, row) {
				res.RowsSkipped++
			}
		}
	}
	return res, nil
}

func fieldsFor(kind model.DatasetKind) []fieldSpec {
	switch kind {
	case model.KindPTP:
		return ptpFields
	case model.KindMUE:
		return mueFields
	default:
		return aocFields
	}
}

// resolveColumns maps canonical field names to column indices. ok=false
// when any required field has no matching header cell.
func resolveColumns(header []string, fields []fieldSpec) (map[string]int, bool) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cols := make(map[string]int, len(fields))
	for _, f := range fields {
	aliasLoop:
		for _, alias := range f.aliases {
			for i, h := range normalized {
				if h != "" && strings.Contains(h, alias) {
					cols[f.name] = i
					break aliasLoop
				}
			}
		}
		if _, found := cols[f.name]; !found && f.required {
			return nil, false
		}
	}
	return cols, true
}

// cell returns the raw value of a canonical field for the row, "" when the
// field is unmapped or the row is short.
func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// headerEcho reports whether the value is a duplicate of its own header
// cell, which happens when CMS repeats the header mid-data.
func headerEcho(value string, header []string, cols map[string]int, field string) bool {
	i, ok := cols[field]
	if !ok || i >= len(header) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(header[i]))
}

// appendRow validates and appends one data row; false means skipped.
func appendRow(rules *model.RuleSet, cat model.Category, cols map[string]int, header, row []string) bool {
	switch cat.Kind {
	case model.KindPTP:
		code1 := NormalizeCode(cell(row, cols, "code1"))
		code2 := NormalizeCode(cell(row, cols, "code2"))
		if code1 == "" || code2 == "" ||
			headerEcho(code1, header, cols, "code1") || headerEcho(code2, header, cols, "code2") {
			return false
		}
		raw := strings.TrimSpace(cell(row, cols, "modifier_indicator"))
		if len(raw) > 1 {
			raw = raw[:1]
		}
		rules.PTP = append(rules.PTP, model.EditPair{
			Code1:             code1,
			Code2:             code2,
			ModifierIndicator: model.ParseModifierIndicator(raw),
			EffectiveDate:     ParseDate(cell(row, cols, "effective_date")),
			ProviderType:      cat.Partition,
		})

	case model.KindMUE:
		code := NormalizeCode(cell(row, cols, "code"))
		rawUnits := cell(row, cols, "max_units")
		if code == "" || rawUnits == "" || headerEcho(code, header, cols, "code") {
			return false
		}
		units, ok := ParseUnits(rawUnits)
		if !ok {
			return false
		}
		rules.MUE = append(rules.MUE, model.MUERule{
			Code:          code,
			MaxUnits:      units,
			EffectiveDate: ParseDate(cell(row, cols, "effective_date")),
			ServiceType:   cat.Partition,
		})

	case model.KindAOC:
		addon := NormalizeCode(cell(row, cols, "addon_code"))
		primary := NormalizeCode(cell(row, cols, "primary_code"))
		if addon == "" || primary == "" || addon == primary ||
			headerEcho(addon, header, cols, "addon_code") || headerEcho(primary, header, cols, "primary_code") {
			return false
		}
		rules.AOC = append(rules.AOC, model.AOCRule{
			AddonCode:     addon,
			PrimaryCode:   primary,
			EffectiveDate: ParseDate(cell(row, cols, "effective_date")),
		})
	}
	return true
}

// loadTables reads the entry into one row table per sheet. Delimited text
// yields a single table; xlsx yields one per worksheet.
func loadTables(entryName string, data []byte) ([][][]string, error) {
	switch strings.ToLower(path.Ext(entryName)) {
	case ".xlsx", ".xls":
		return loadExcel(data)
	default:
		table, err := loadDelimited(data)
		if err != nil {
			return nil, err
		}
		return [][][]string{table}, nil
	}
}

func loadExcel(data []byte) ([][][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var tables [][][]string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
		}
		tables = append(tables, rows)
	}
	return tables, nil
}

// loadDelimited parses csv/txt entries, sniffing tab vs comma from the
// first line.
func loadDelimited(data []byte) ([][]string, error) {
	comma := ','
	if i := bytes.IndexByte(data, '\n'); i > 0 {
		first := data[:i]
		if bytes.Count(first, []byte{'\t'}) > bytes.Count(first, []byte{','}) {
			comma = '\t'
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited entry: %w", err)
	}
	return rows, nil
}
