// Package schoolmenu displays a school lunch menu on an e-ink picture
// frame. Menu data comes from the School Nutrition and Fitness GraphQL API
// when a menu ID is configured, with a deterministic fallback otherwise.
package schoolmenu

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/arkottke/inkyframe/internal/canvas"
	"github.com/arkottke/inkyframe/plugin"
)

// fontScales maps the fontSize setting to a scale factor applied to every
// text size in the layout.
var fontScales = map[string]float64{
	"small":       0.8,
	"normal":      1.0,
	"large":       1.2,
	"extra_large": 1.4,
}

// Plugin renders the school menu bitmap. It implements plugin.Renderer.
type Plugin struct {
	client *Client
}

// New builds the plugin around a menu client. A nil client gets the default
// configuration.
func New(client *Client) *Plugin {
	if client == nil {
		client = NewClient()
	}
	return &Plugin{client: client}
}

// Factory adapts the plugin for registry registration.
func Factory(client *Client) plugin.Factory {
	return func() plugin.Renderer { return New(client) }
}

type renderConfig struct {
	source   Source
	numDays  int
	title    string
	showDate bool
	scale    float64
}

// parseSettings reads the plugin instance settings. Unlike MenuForDays,
// which rejects an out-of-range day count, the settings parser clamps it to
// one day: a misconfigured frame should still show today's menu rather than
// an error screen.
func parseSettings(s plugin.Settings) renderConfig {
	numDays := s.Int("numDays", 1)
	if numDays < MinDays || numDays > MaxDays {
		numDays = MinDays
	}
	scale, ok := fontScales[s.String("fontSize", "normal")]
	if !ok {
		scale = 1.0
	}
	return renderConfig{
		source: Source{
			MenuID:   s.String("menuId", ""),
			SiteCode: s.String("siteCode", ""),
		},
		numDays:  numDays,
		title:    s.String("customTitle", "School Lunch Menu"),
		showDate: s.Bool("showDate", true),
		scale:    scale,
	}
}

// Render fetches the menu window and lays it out as black text on a white
// canvas. Only an invalid canvas or a font failure surfaces as an error;
// menu fetch problems already degraded to fallback lines inside the client.
func (p *Plugin) Render(ctx context.Context, settings plugin.Settings, device plugin.DeviceConfig) (image.Image, error) {
	cfg := parseSettings(settings)

	days, err := p.client.MenuForDays(ctx, cfg.numDays, cfg.source)
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: render: %w", err)
	}

	width, height := device.Resolution()
	if device.Vertical() {
		width, height = height, width
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("schoolmenu: render: invalid canvas size %dx%d", width, height)
	}

	titleFace, err := canvas.Face(22 * cfg.scale)
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: render: %w", err)
	}
	headingFace, err := canvas.Face(16 * cfg.scale)
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: render: %w", err)
	}
	itemFace, err := canvas.Face(13 * cfg.scale)
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: render: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	canvas.Fill(img, img.Bounds(), color.White)

	const margin = 10
	y := margin + canvas.LineHeight(titleFace)
	canvas.DrawString(img, cfg.title, titleFace, color.Black,
		(width-canvas.TextWidth(titleFace, cfg.title))/2, y)
	y += canvas.LineHeight(titleFace) / 2

	for _, day := range days {
		if y >= height-margin {
			break
		}
		y += canvas.LineHeight(headingFace)
		canvas.DrawString(img, dayHeading(day, cfg.showDate), headingFace, color.Black, margin, y)
		for _, item := range day.Items {
			if y >= height-margin {
				break
			}
			y += canvas.LineHeight(itemFace)
			canvas.DrawString(img, "• "+item, itemFace, color.Black, margin*2, y)
		}
		y += canvas.LineHeight(itemFace) / 2
	}

	p.drawTimestamp(img, device, width, height, margin)
	return img, nil
}

// dayHeading formats one day's section heading, e.g. "Wednesday 8/26".
func dayHeading(day MenuDay, showDate bool) string {
	t, err := time.Parse(dateLayout, day.Date)
	if err != nil {
		return day.Date
	}
	if showDate {
		return t.Format("Monday 1/2")
	}
	return t.Format("Monday")
}

// drawTimestamp stamps the render time bottom-right using the host's
// timezone and time format lookups. An unknown timezone skips the stamp.
func (p *Plugin) drawTimestamp(img *image.RGBA, device plugin.DeviceConfig, width, height, margin int) {
	loc, err := time.LoadLocation(device.Lookup("timezone", "America/New_York"))
	if err != nil {
		p.client.logf("schoolmenu: skipping timestamp: %v", err)
		return
	}
	layout := "3:04 PM"
	if device.Lookup("time_format", "12h") == "24h" {
		layout = "15:04"
	}
	stamp := p.client.now().In(loc).Format(layout)

	face, err := canvas.Face(10)
	if err != nil {
		return
	}
	canvas.DrawString(img, stamp, face, color.Black,
		width-margin-canvas.TextWidth(face, stamp), height-margin)
}
