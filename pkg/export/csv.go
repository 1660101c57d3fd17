package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// CSVRenderer writes rows with a header line taken from the csv tags.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces CSV bytes. An empty sheet still yields the header.
func (r *CSVRenderer) Render(sheet Sheet) ([]byte, error) {
	rows := sheet.Rows
	if rows == nil {
		rows = []SlotRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return out, nil
}
