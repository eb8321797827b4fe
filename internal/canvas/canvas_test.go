package canvas

import (
	"image"
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	c, ok := ParseHex("#cccccc")
	if !ok || c.R != 0xcc || c.G != 0xcc || c.B != 0xcc || c.A != 0xff {
		t.Fatalf("parse #cccccc: %v ok=%v", c, ok)
	}
	c, ok = ParseHex("#FF8000")
	if !ok || c.R != 0xff || c.G != 0x80 || c.B != 0x00 {
		t.Fatalf("parse #FF8000: %v ok=%v", c, ok)
	}
	for _, bad := range []string{"", "#fff", "cccccc", "#gggggg", "#ccccccc"} {
		if _, ok := ParseHex(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestFaceCachesPerSize(t *testing.T) {
	a, err := Face(14)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	b, err := Face(14)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	if a != b {
		t.Fatal("same size should return cached face")
	}
	c, err := Face(18)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	if a == c {
		t.Fatal("different sizes should return distinct faces")
	}
	if _, err := Face(0); err != nil {
		t.Fatalf("non-positive size should fall back to default, got %v", err)
	}
}

func TestFillAndLines(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 0xff, A: 0xff}

	Fill(img, image.Rect(2, 2, 4, 4), red)
	if got := img.RGBAAt(2, 2); got != red {
		t.Fatalf("fill pixel: %v", got)
	}
	if got := img.RGBAAt(4, 4); got == red {
		t.Fatal("fill should be exclusive of max")
	}

	HLine(img, 0, 10, 7, red)
	if img.RGBAAt(9, 7) != red || img.RGBAAt(9, 8) == red {
		t.Fatal("hline should be 1px tall")
	}
	VLine(img, 5, 0, 10, red)
	if img.RGBAAt(5, 9) != red || img.RGBAAt(6, 9) == red {
		t.Fatal("vline should be 1px wide")
	}
}

func TestDrawStringCenteredMarksPixels(t *testing.T) {
	face, err := Face(16)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	Fill(img, img.Bounds(), color.White)
	DrawStringCentered(img, "Err", face, color.Black, img.Bounds())

	dark := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			c := img.RGBAAt(x, y)
			if c.R < 0x80 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("centered text should paint dark pixels")
	}
}
