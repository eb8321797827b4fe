// Package canvas holds the small bitmap drawing helpers shared by the
// display plugins: scaled font faces, text placement, and color parsing.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	fontParsed *sfnt.Font
	fontErr    error

	faceMu    sync.Mutex
	faceCache = make(map[float64]font.Face)
)

// Face returns a Go Regular face at the given point size. Faces are cached
// per size; the returned face must not be closed by callers.
func Face(points float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontParsed, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	if points <= 0 {
		points = 12
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[points]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fontParsed, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	faceCache[points] = f
	return f, nil
}

// TextWidth returns the advance width of s in pixels for the given face.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns the face's line height in pixels.
func LineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// DrawString draws s with its baseline at (x, y).
func DrawString(dst draw.Image, s string, face font.Face, c color.Color, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// DrawStringCentered draws s horizontally and vertically centered in rect.
func DrawStringCentered(dst draw.Image, s string, face font.Face, c color.Color, rect image.Rectangle) {
	m := face.Metrics()
	w := TextWidth(face, s)
	h := (m.Ascent + m.Descent).Ceil()
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-h)/2 + m.Ascent.Ceil()
	DrawString(dst, s, face, c, x, y)
}

// Fill paints rect with c.
func Fill(dst draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// HLine draws a 1-pixel horizontal line at y from x0 to x1 (exclusive).
func HLine(dst draw.Image, x0, x1, y int, c color.Color) {
	Fill(dst, image.Rect(x0, y, x1, y+1), c)
}

// VLine draws a 1-pixel vertical line at x from y0 to y1 (exclusive).
func VLine(dst draw.Image, x, y0, y1 int, c color.Color) {
	Fill(dst, image.Rect(x, y0, x+1, y1), c)
}

// ParseHex parses a "#rrggbb" color. Anything else (including short forms)
// reports ok=false and callers keep their default.
func ParseHex(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[1+2*i])
		lo, ok2 := hexNibble(s[2+2*i])
		if !ok1 || !ok2 {
			return color.RGBA{}, false
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}, true
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
