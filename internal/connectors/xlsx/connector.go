package xlsx

import (
	"context"
	"fmt"
	"os"

	"registrar/internal/pipeline"
)

// Connector serves grids out of a local workbook export, for offline use
// and for replaying a snapshot against the store.
type Connector struct {
	grids map[string][][]string
	names []string
}

func NewConnector(path string) (*Connector, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	grids, names, err := pipeline.GridsFromWorkbook(blob)
	if err != nil {
		return nil, err
	}
	return &Connector{grids: grids, names: names}, nil
}

func (c *Connector) ListSheets(ctx context.Context) ([]string, error) {
	return c.names, nil
}

func (c *Connector) GetGrid(ctx context.Context, sheetName string) ([][]string, error) {
	grid, ok := c.grids[sheetName]
	if !ok {
		return nil, fmt.Errorf("workbook has no sheet %q", sheetName)
	}
	return grid, nil
}
