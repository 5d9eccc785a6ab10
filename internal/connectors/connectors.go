package connectors

import "context"

// GridSource is any backend that can enumerate company tabs and hand back
// their raw cell grids. Internal tabs are already filtered out.
type GridSource interface {
	ListSheets(ctx context.Context) ([]string, error)
	GetGrid(ctx context.Context, sheetName string) ([][]string, error)
}
