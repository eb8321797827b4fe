package tile

import "github.com/arkottke/inkyframe/plugin"

// tileDevice is the narrowed DeviceConfig handed to a child plugin: it
// reports the tile's pixel size and forwards every other lookup to the
// original. The compositor has already applied the display orientation when
// computing tile rectangles, so the narrowed view reports final pixel
// dimensions with no further swap.
type tileDevice struct {
	parent plugin.DeviceConfig
	width  int
	height int
}

func narrowDevice(parent plugin.DeviceConfig, width, height int) *tileDevice {
	return &tileDevice{parent: parent, width: width, height: height}
}

func (d *tileDevice) Resolution() (int, int) { return d.width, d.height }

func (d *tileDevice) Vertical() bool { return false }

func (d *tileDevice) Mode() plugin.ColorMode { return d.parent.Mode() }

func (d *tileDevice) Lookup(key, def string) string { return d.parent.Lookup(key, def) }
