// Package tile subdivides the display into a grid and delegates each cell's
// rendering to another plugin instance, compositing the results into one
// bitmap. Per-tile failures render a visible error marker instead of
// aborting the layout.
package tile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arkottke/inkyframe/plugin"
)

var (
	// ErrInvalidPlacement indicates a placement with negative coordinates
	// or extents.
	ErrInvalidPlacement = errors.New("tile: invalid placement")
	// ErrInvalidTilesJSON indicates the tiles setting is not a JSON array
	// of placements.
	ErrInvalidTilesJSON = errors.New("tile: invalid tiles configuration")
)

// GridShape is the (columns, rows) partition of the canvas.
type GridShape struct {
	Columns int
	Rows    int
}

// gridShapes is the fixed enumeration of selectable grid sizes.
var gridShapes = map[string]GridShape{
	"2x2":   {2, 2},
	"3x3":   {3, 3},
	"4x4":   {4, 4},
	"5x5":   {5, 5},
	"6x6":   {6, 6},
	"7x7":   {7, 7},
	"8x8":   {8, 8},
	"9x9":   {9, 9},
	"10x10": {10, 10},
}

// ParseGridShape resolves a grid-size name like "4x4". Unknown names report
// ok=false and callers keep the default.
func ParseGridShape(name string) (GridShape, bool) {
	shape, ok := gridShapes[name]
	return shape, ok
}

// Placement assigns one child plugin to a rectangular grid region. Settings
// are passed to the child unchanged. Overlapping placements simply paint in
// list order; the compositor does not enforce non-overlap.
type Placement struct {
	// X and Y are the grid coordinates of the top-left cell.
	X int `json:"x"`
	Y int `json:"y"`
	// Width and Height are the extent in grid cells (default 1).
	Width  int `json:"width"`
	Height int `json:"height"`
	// PluginID names the child plugin to render in this region.
	PluginID string `json:"plugin_id"`
	// PluginSettings is the opaque settings mapping for the child.
	PluginSettings plugin.Settings `json:"plugin_settings"`
}

// ParsePlacements decodes the JSON-encoded tile placement list. Omitted
// extents default to one cell; negative coordinates or extents are
// rejected.
func ParsePlacements(raw string) ([]Placement, error) {
	if raw == "" {
		return nil, nil
	}
	var placements []Placement
	if err := json.Unmarshal([]byte(raw), &placements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTilesJSON, err)
	}
	for i := range placements {
		p := &placements[i]
		if p.Width == 0 {
			p.Width = 1
		}
		if p.Height == 0 {
			p.Height = 1
		}
		if p.X < 0 || p.Y < 0 || p.Width < 0 || p.Height < 0 {
			return nil, fmt.Errorf("%w: negative coordinate or extent at index %d", ErrInvalidPlacement, i)
		}
	}
	return placements, nil
}
