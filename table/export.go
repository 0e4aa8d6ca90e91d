package table

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the header row and the currently *filtered* data set —
// every page of it, not just the one displayed. In server mode the exported
// set is whatever the last fetch returned (the backend has already applied
// the search), unless the degenerate unpaginated response is active, in
// which case the locally filtered full set is exported.
func (t *Table) WriteCSV(w io.Writer) error {
	t.mu.Lock()
	rows := t.filtered()
	cols := t.columns
	t.mu.Unlock()

	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = c.Cell(row)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
