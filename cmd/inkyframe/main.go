// Package main provides a CLI for the inkyframe display plugins. It renders
// the school menu or a tile layout to a PNG file, and pushes a rendered PNG
// to an Inky e-paper panel over SPI.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"

	"github.com/arkottke/inkyframe/plugin"
	"github.com/arkottke/inkyframe/schoolmenu"
	"github.com/arkottke/inkyframe/tile"
)

const renderTimeout = 60 * time.Second

func main() {
	// Optional .env with INKYFRAME_* defaults; missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "menu":
		err = runMenu(os.Args[2:])
	case "tile":
		err = runTile(os.Args[2:])
	case "push":
		err = runPush(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkyframe: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: inkyframe <command> [flags]

Commands:
  menu   Render the school lunch menu to a PNG file
  tile   Render a tile layout of plugins to a PNG file
  push   Send a PNG to an Inky e-paper panel over SPI

Run 'inkyframe <command> -h' for command flags.`)
}

func runMenu(args []string) error {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	menuID := fs.String("menu-id", os.Getenv("INKYFRAME_MENU_ID"), "Menu ID from the School Nutrition website URL; or set INKYFRAME_MENU_ID")
	siteCode := fs.String("site-code", os.Getenv("INKYFRAME_SITE_CODE"), "Optional site code; or set INKYFRAME_SITE_CODE")
	days := fs.Int("days", 1, "Number of school days to display (1-5)")
	title := fs.String("title", "", "Custom title (optional)")
	fontSize := fs.String("font-size", "normal", "Font size (small|normal|large|extra_large)")
	showDate := fs.Bool("show-date", true, "Show dates in day headings")
	size := fs.String("size", "800x480", "Canvas size WxH in pixels")
	vertical := fs.Bool("vertical", false, "Vertically mounted display")
	timezone := fs.String("timezone", "America/New_York", "Timezone for the render timestamp")
	out := fs.String("out", "menu.png", "Output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	width, height, err := parseSize(*size)
	if err != nil {
		return err
	}

	settings := plugin.Settings{
		"menuId":   *menuID,
		"siteCode": *siteCode,
		"numDays":  strconv.Itoa(*days),
		"fontSize": *fontSize,
		"showDate": strconv.FormatBool(*showDate),
	}
	if strings.TrimSpace(*title) != "" {
		settings["customTitle"] = *title
	}
	device := &plugin.Device{
		Width:    width,
		Height:   height,
		Portrait: *vertical,
		Extra:    map[string]string{"timezone": *timezone},
	}

	logger := log.New(os.Stderr, "inkyframe: ", log.LstdFlags)
	p := schoolmenu.New(schoolmenu.NewClient(schoolmenu.WithLogger(logger)))

	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()
	img, err := p.Render(ctx, settings, device)
	if err != nil {
		return err
	}
	if err := writePNG(*out, img); err != nil {
		return err
	}
	fmt.Printf("Menu rendered to %s (%dx%d)\n", *out, width, height)
	return nil
}

func runTile(args []string) error {
	fs := flag.NewFlagSet("tile", flag.ContinueOnError)
	grid := fs.String("grid", "4x4", "Grid size (2x2 .. 10x10)")
	tiles := fs.String("tiles", "", "Tile placements as a JSON array")
	tilesFile := fs.String("tiles-file", "", "Path to a JSON file with tile placements")
	size := fs.String("size", "800x480", "Canvas size WxH in pixels")
	vertical := fs.Bool("vertical", false, "Vertically mounted display")
	bw := fs.Bool("bw", false, "Render for a black-and-white panel")
	borders := fs.Bool("borders", true, "Draw grid borders")
	borderColor := fs.String("border-color", "#cccccc", "Border color (#rrggbb)")
	background := fs.String("background", "#ffffff", "Background color (#rrggbb)")
	out := fs.String("out", "tiles.png", "Output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	width, height, err := parseSize(*size)
	if err != nil {
		return err
	}

	tilesJSON := strings.TrimSpace(*tiles)
	if *tilesFile != "" {
		if tilesJSON != "" {
			return fmt.Errorf("provide either -tiles or -tiles-file, not both")
		}
		data, err := os.ReadFile(*tilesFile)
		if err != nil {
			return fmt.Errorf("read tiles file: %w", err)
		}
		tilesJSON = string(data)
	}
	if tilesJSON == "" {
		tilesJSON = "[]"
	}

	logger := log.New(os.Stderr, "inkyframe: ", log.LstdFlags)
	registry := plugin.NewRegistry()
	menuClient := schoolmenu.NewClient(schoolmenu.WithLogger(logger))
	if err := registry.Register("schoolmenu", schoolmenu.Factory(menuClient)); err != nil {
		return err
	}

	mode := plugin.ModeColor
	if *bw {
		mode = plugin.ModeBW
	}
	device := &plugin.Device{
		Width:    width,
		Height:   height,
		Portrait: *vertical,
		Color:    mode,
		Extra:    map[string]string{"timezone": os.Getenv("INKYFRAME_TIMEZONE")},
	}
	settings := plugin.Settings{
		"gridSize":        *grid,
		"showBorders":     strconv.FormatBool(*borders),
		"borderColor":     *borderColor,
		"backgroundColor": *background,
		"tiles":           tilesJSON,
	}

	comp := tile.New(registry, tile.WithLogger(logger))
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()
	img, err := comp.Render(ctx, settings, device)
	if err != nil {
		return err
	}
	if err := writePNG(*out, img); err != nil {
		return err
	}
	fmt.Printf("Tile layout rendered to %s (%dx%d)\n", *out, width, height)
	return nil
}

func runPush(args []string) error {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	imagePath := fs.String("image", "", "Path to the PNG to display (required)")
	model := fs.String("model", "phat", "Inky model (phat|what)")
	modelColor := fs.String("model-color", "red", "Panel color (black|red|yellow)")
	borderColor := fs.String("border", "white", "Border color (black|white)")
	spiPort := fs.String("spi", "SPI0.0", "SPI port name")
	dcPin := fs.String("dc", "22", "Data/command GPIO pin")
	resetPin := fs.String("reset", "27", "Reset GPIO pin")
	busyPin := fs.String("busy", "17", "Busy GPIO pin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*imagePath) == "" {
		return fmt.Errorf("-image is required")
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		return err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *imagePath, err)
	}

	opts := &inky.Opts{}
	switch strings.ToLower(*model) {
	case "phat":
		opts.Model = inky.PHAT
	case "what":
		opts.Model = inky.WHAT
	default:
		return fmt.Errorf("unknown model %q", *model)
	}
	opts.ModelColor, err = parseInkyColor(*modelColor)
	if err != nil {
		return err
	}
	opts.BorderColor, err = parseInkyColor(*borderColor)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(*spiPort)
	if err != nil {
		return fmt.Errorf("open SPI port %q: %w", *spiPort, err)
	}
	defer port.Close()

	dc := gpioreg.ByName(*dcPin)
	reset := gpioreg.ByName(*resetPin)
	busy := gpioreg.ByName(*busyPin)
	if dc == nil || reset == nil || busy == nil {
		return fmt.Errorf("GPIO pins not found (dc=%s reset=%s busy=%s)", *dcPin, *resetPin, *busyPin)
	}

	dev, err := inky.New(port, dc, reset, busy, opts)
	if err != nil {
		return fmt.Errorf("init inky panel: %w", err)
	}
	if err := dev.Draw(img.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("draw to panel: %w", err)
	}
	fmt.Printf("Pushed %s to %s panel\n", *imagePath, *model)
	return nil
}

func parseInkyColor(name string) (inky.Color, error) {
	switch strings.ToLower(name) {
	case "black":
		return inky.Black, nil
	case "white":
		return inky.White, nil
	case "red":
		return inky.Red, nil
	case "yellow":
		return inky.Yellow, nil
	}
	return inky.Black, fmt.Errorf("unknown color %q", name)
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %v", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %v", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return w, h, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
