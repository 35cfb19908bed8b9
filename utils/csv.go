package utils

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes rows as RFC 4180 CSV, quoting fields where needed.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
