// Package archive walks NCCI zip archives entry by entry.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// sheetExtensions are the entry types handed to the callback. Everything
// else in the archive (PDFs, readme files) is drained without buffering.
var sheetExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".txt":  true,
}

// IsSheetEntry reports whether the entry name has a spreadsheet/text
// extension.
func IsSheetEntry(name string) bool {
	return sheetExtensions[strings.ToLower(path.Ext(name))]
}

// EntryFunc receives one buffered spreadsheet/text entry. Returning an
// error aborts the walk.
type EntryFunc func(name string, data []byte) error

// ExtractSheets walks the zip at zipPath sequentially, buffering only
// spreadsheet/text entries into memory and passing each to fn. Non-sheet
// entries are skipped, bounding memory use to one sheet at a time.
func ExtractSheets(zipPath string, fn EntryFunc) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !IsSheetEntry(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		if err := fn(f.Name, data); err != nil {
			return fmt.Errorf("process entry %s: %w", f.Name, err)
		}
	}
	return nil
}
