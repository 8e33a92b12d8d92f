package dashboard

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Scans"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{"Pet", "Pet ID", "Scanned At", "Latitude", "Longitude", "Address"}

// ExportScans escribe el historial como .xlsx: una fila por scan,
// ordenado por mascota y del más reciente al más viejo.
func (c *Controller) ExportScans(w io.Writer) error {
	c.mu.RLock()
	items := c.items
	history := c.history.Clone()
	c.mu.RUnlock()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.log.Warn("close workbook failed", map[string]any{"error": err})
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("dashboard: export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("dashboard: export header: %w", err)
	}

	sorted := make([]struct{ id, name string }, 0, len(items))
	for _, p := range items {
		sorted = append(sorted, struct{ id, name string }{p.ID, p.Name})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	row := 2
	for _, p := range sorted {
		events := append(history[p.id][:0:0], history[p.id]...)
		sort.SliceStable(events, func(i, j int) bool { return events[i].ScannedAt.After(events[j].ScannedAt) })

		for _, ev := range events {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("dashboard: export: %w", err)
			}
			values := []any{
				p.name,
				p.id,
				ev.ScannedAt.UTC().Format(time.RFC3339),
				ev.Latitude,
				ev.Longitude,
				ev.Address,
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return fmt.Errorf("dashboard: export row %d: %w", row, err)
			}
			row++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("dashboard: write workbook: %w", err)
	}
	return nil
}
