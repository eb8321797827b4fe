// Package plugin defines the contract between the picture-frame host and
// its display plugins: the rendering interface, the device configuration
// view, free-form instance settings, and the registry the host populates
// at startup.
package plugin

import (
	"context"
	"image"
	"strconv"
	"strings"
)

// ColorMode describes the pixel depth of a target display.
type ColorMode int

const (
	// ModeColor renders full RGB output (default).
	ModeColor ColorMode = iota
	// ModeBW renders 1-bit black-and-white output for monochrome panels.
	ModeBW
)

// Settings is the free-form string-keyed configuration for one plugin
// instance. Values are stored as strings; structured values (e.g. tile
// placement lists) are JSON-encoded under a single key.
type Settings map[string]string

// String returns the trimmed value for key, or def when the key is absent
// or blank.
func (s Settings) String(key, def string) string {
	if v, ok := s[key]; ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

// Int returns the value for key parsed as an integer, or def when the key
// is absent or not a valid integer.
func (s Settings) Int(key string, def int) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value for key parsed as a boolean ("true"/"false",
// "1"/"0", case-insensitive), or def when absent or unparseable.
func (s Settings) Bool(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return def
	}
	return b
}

// DeviceConfig is the host-provided view of the target display. The tile
// compositor hands children a narrowed DeviceConfig reporting the sub-tile
// pixel size while forwarding every other lookup to the original.
type DeviceConfig interface {
	// Resolution returns the canvas size in pixels, before any
	// orientation swap.
	Resolution() (width, height int)
	// Vertical reports whether the display is mounted vertically;
	// renderers swap the canvas dimensions when true.
	Vertical() bool
	// Mode reports the display color mode.
	Mode() ColorMode
	// Lookup returns a named host configuration value (e.g. "timezone",
	// "time_format"), or def when unset.
	Lookup(key, def string) string
}

// Renderer is the uniform rendering contract every display plugin
// implements, including children hosted inside a tile layout.
type Renderer interface {
	Render(ctx context.Context, settings Settings, device DeviceConfig) (image.Image, error)
}

// RendererFunc adapts a function into a Renderer.
type RendererFunc func(ctx context.Context, settings Settings, device DeviceConfig) (image.Image, error)

// Render implements the Renderer interface by invoking the function.
func (f RendererFunc) Render(ctx context.Context, settings Settings, device DeviceConfig) (image.Image, error) {
	return f(ctx, settings, device)
}

// Device is a concrete DeviceConfig for hosts and tests.
type Device struct {
	// Width and Height are the panel resolution in pixels.
	Width, Height int
	// Portrait marks a vertically mounted panel.
	Portrait bool
	// Color selects the panel color mode.
	Color ColorMode
	// Extra holds arbitrary named configuration (timezone, time format, ...).
	Extra map[string]string
}

// Resolution returns the configured panel size.
func (d *Device) Resolution() (int, int) { return d.Width, d.Height }

// Vertical reports the orientation flag.
func (d *Device) Vertical() bool { return d.Portrait }

// Mode reports the color mode flag.
func (d *Device) Mode() ColorMode { return d.Color }

// Lookup returns the named value from Extra, or def when unset or blank.
func (d *Device) Lookup(key, def string) string {
	if v, ok := d.Extra[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
