package tile

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/basicfont"

	"github.com/arkottke/inkyframe/internal/canvas"
	"github.com/arkottke/inkyframe/plugin"
)

const (
	defaultGridSize        = "4x4"
	defaultBorderColor     = "#cccccc"
	defaultBackgroundColor = "#ffffff"
)

// errorFill is the background of an error tile on color displays.
var errorFill = color.RGBA{R: 255, G: 200, B: 200, A: 255}

// Compositor renders a grid layout by delegating each placement to a child
// plugin through a Resolver. It implements plugin.Renderer itself, so a
// registry entry can nest other plugins; the host must keep the tile plugin
// out of the child plugin list to avoid self-reference.
type Compositor struct {
	resolver plugin.Resolver
	logger   *log.Logger
}

// Option mutates the compositor during construction.
type Option func(*Compositor)

// WithLogger installs a logger for recovered per-tile failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

// New builds a compositor over a resolver.
func New(resolver plugin.Resolver, opts ...Option) *Compositor {
	c := &Compositor{resolver: resolver}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Factory adapts the compositor for registry registration.
func Factory(resolver plugin.Resolver, opts ...Option) plugin.Factory {
	return func() plugin.Renderer { return New(resolver, opts...) }
}

func (c *Compositor) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Render composes the tile layout. Child plugins run synchronously in
// placement order; any per-tile failure (unknown plugin, child error or
// panic) paints an error marker over that tile's rectangle and composition
// continues. Only an unusable canvas fails the whole render.
func (c *Compositor) Render(ctx context.Context, settings plugin.Settings, device plugin.DeviceConfig) (image.Image, error) {
	grid, ok := ParseGridShape(settings.String("gridSize", defaultGridSize))
	if !ok {
		grid = gridShapes[defaultGridSize]
	}

	width, height := device.Resolution()
	if device.Vertical() {
		width, height = height, width
	}
	if width < grid.Columns || height < grid.Rows {
		return nil, fmt.Errorf("tile: canvas %dx%d too small for %dx%d grid", width, height, grid.Columns, grid.Rows)
	}

	bw := device.Mode() == plugin.ModeBW
	var img draw.Image
	borderColor := color.Color(color.Black)
	if bw {
		img = image.NewGray(image.Rect(0, 0, width, height))
		canvas.Fill(img, img.Bounds(), color.White)
	} else {
		background := color.Color(color.White)
		if bg, ok := canvas.ParseHex(settings.String("backgroundColor", defaultBackgroundColor)); ok {
			background = bg
		}
		if bc, ok := canvas.ParseHex(settings.String("borderColor", defaultBorderColor)); ok {
			borderColor = bc
		}
		img = image.NewRGBA(image.Rect(0, 0, width, height))
		canvas.Fill(img, img.Bounds(), background)
	}

	// Remainder pixels from the floor division stay background margin on
	// the far edges.
	cellW := width / grid.Columns
	cellH := height / grid.Rows

	if settings.Bool("showBorders", true) {
		drawGridBorders(img, width, height, grid, cellW, cellH, borderColor)
	}

	placements, err := ParsePlacements(settings.String("tiles", "[]"))
	if err != nil {
		c.logf("tile: ignoring placements: %v", err)
		placements = nil
	}
	for _, p := range placements {
		c.renderTile(ctx, img, p, cellW, cellH, device)
	}
	return img, nil
}

// drawGridBorders draws 1-pixel lines along every internal column and row
// boundary, independent of actual tile placements.
func drawGridBorders(dst draw.Image, width, height int, grid GridShape, cellW, cellH int, c color.Color) {
	for col := 1; col < grid.Columns; col++ {
		canvas.VLine(dst, col*cellW, 0, height, c)
	}
	for row := 1; row < grid.Rows; row++ {
		canvas.HLine(dst, 0, width, row*cellH, c)
	}
}

func (c *Compositor) renderTile(ctx context.Context, dst draw.Image, p Placement, cellW, cellH int, device plugin.DeviceConfig) {
	rect := image.Rect(p.X*cellW, p.Y*cellH, (p.X+p.Width)*cellW, (p.Y+p.Height)*cellH)

	child, err := c.renderChild(ctx, p, rect, device)
	if err != nil {
		c.logf("tile: plugin %q failed: %v", p.PluginID, err)
		drawErrorTile(dst, rect, p.PluginID)
		return
	}

	if size := child.Bounds().Size(); size.X != rect.Dx() || size.Y != rect.Dy() {
		child = imaging.Resize(child, rect.Dx(), rect.Dy(), imaging.Lanczos)
	}
	if _, gray := dst.(*image.Gray); gray {
		child = imaging.Grayscale(child)
	}
	draw.Draw(dst, rect, child, child.Bounds().Min, draw.Src)
}

// renderChild resolves and invokes the child plugin with a narrowed device
// view. Child panics are recovered and reported as errors so a misbehaving
// plugin cannot take down the whole composition.
func (c *Compositor) renderChild(ctx context.Context, p Placement, rect image.Rectangle, device plugin.DeviceConfig) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("tile: plugin %q panicked: %v", p.PluginID, r)
		}
	}()

	renderer, err := c.resolver.Resolve(p.PluginID)
	if err != nil {
		return nil, err
	}
	img, err = renderer.Render(ctx, p.PluginSettings, narrowDevice(device, rect.Dx(), rect.Dy()))
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("tile: plugin %q returned no image", p.PluginID)
	}
	return img, nil
}

// drawErrorTile covers exactly the failed tile's rectangle with a visible
// marker: pink with a black label on color canvases, black with a white
// label on monochrome ones.
func drawErrorTile(dst draw.Image, rect image.Rectangle, pluginID string) {
	fill := color.Color(errorFill)
	text := color.Color(color.Black)
	if _, gray := dst.(*image.Gray); gray {
		fill = color.Black
		text = color.White
	}
	canvas.Fill(dst, rect, fill)
	canvas.DrawStringCentered(dst, "Error: "+pluginID, basicfont.Face7x13, text, rect)
}
