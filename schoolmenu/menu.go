package schoolmenu

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// MinDays and MaxDays bound the number of school days a single menu
	// render may request. The menu API publishes one school week at a time,
	// so five days is the ceiling.
	MinDays = 1
	MaxDays = 5

	// placeholderNoMenu marks a requested day the fetched menu has no
	// items for (or whose date falls outside the menu's month/year).
	placeholderNoMenu = "No menu available"
	// placeholderUnavailable is what the default fallback provider serves
	// when no remote source is configured or the fetch failed entirely.
	placeholderUnavailable = "Menu not available"

	dateLayout = "2006-01-02"
)

// standardItems is the default standard-accompaniment denylist: side items
// printed on every school day that only add noise on a small display.
// Matching is case-insensitive by substring.
var standardItems = []string{
	"Garden Bar:",
	"Organic Fresh Fruits and Veggies",
	"Straus Organic 1% Milk",
	"Non-fat milk",
	"Low-fat Milk",
	"Milk",
	"Garden Bar: Fresh Fruits and Veggies",
}

// Source identifies where menu data comes from. A zero MenuID means no
// remote source: every requested day is served by the fallback provider.
type Source struct {
	// MenuID is the menu identifier from the School Nutrition website URL.
	MenuID string
	// SiteCode is the optional site code when present in the URL.
	SiteCode string
}

// Remote reports whether the source names a remote menu.
func (s Source) Remote() bool { return strings.TrimSpace(s.MenuID) != "" }

// MenuDay is one school day's menu: an ISO date and its ordered, filtered
// item names.
type MenuDay struct {
	Date  string
	Items []string
}

// FallbackProvider supplies menu lines for a school day when no remote data
// is available. Hosts and tests substitute deterministic fixtures here.
type FallbackProvider interface {
	Items(day time.Time) []string
}

// FallbackFunc adapts a function into a FallbackProvider.
type FallbackFunc func(day time.Time) []string

// Items implements the FallbackProvider interface.
func (f FallbackFunc) Items(day time.Time) []string { return f(day) }

func unavailableFallback(time.Time) []string {
	return []string{placeholderUnavailable}
}

// Menu mirrors the API's menu object: the month and year it covers, and its
// per-day line items.
type Menu struct {
	Name  string     `json:"name"`
	Month int        `json:"month"`
	Year  int        `json:"year"`
	Items []MenuItem `json:"items"`
}

// MenuItem is one line item carrying a day of month and a product name.
type MenuItem struct {
	Day     int     `json:"day"`
	Month   int     `json:"month"`
	Year    int     `json:"year"`
	Date    string  `json:"date"`
	Product Product `json:"product"`
}

// Product carries the displayed item name.
type Product struct {
	Name string `json:"name"`
}

type menuEnvelope struct {
	Data struct {
		Menu *Menu `json:"menu"`
	} `json:"data"`
	Errors []wireError `json:"errors"`
}

type wireError struct {
	Message string `json:"message"`
}

// MenuForDays returns the menu for numDays school days starting today, in
// chronological order with weekends skipped. Out-of-range numDays is
// rejected with ErrInvalidDayCount; this is the only error the call can
// return. Remote fetch and parse failures never propagate: they are logged
// and every requested day degrades to the fallback provider (no partial
// success).
func (c *Client) MenuForDays(ctx context.Context, numDays int, src Source) ([]MenuDay, error) {
	if numDays < MinDays || numDays > MaxDays {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidDayCount, numDays, MinDays, MaxDays)
	}
	if !src.Remote() {
		return c.fallbackDays(numDays), nil
	}

	menu, err := c.FetchMenu(ctx, src)
	if err != nil {
		c.logf("schoolmenu: fetch failed, serving fallback menu: %v", err)
		return c.fallbackDays(numDays), nil
	}
	return c.assembleDays(menu, numDays), nil
}

// schoolDays collects n Monday-Friday dates starting at from.
func schoolDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := from; len(days) < n; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func (c *Client) fallbackDays(numDays int) []MenuDay {
	out := make([]MenuDay, 0, numDays)
	for _, day := range schoolDays(c.now(), numDays) {
		out = append(out, MenuDay{Date: day.Format(dateLayout), Items: c.fallback.Items(day)})
	}
	return out
}

// assembleDays converts a fetched menu into the per-day result: items are
// grouped by day of month, cleaned, deduplicated, and filtered against the
// denylist; days without usable data get the placeholder line.
func (c *Client) assembleDays(menu *Menu, numDays int) []MenuDay {
	grouped := groupItemsByDay(menu.Items)

	out := make([]MenuDay, 0, numDays)
	for _, day := range schoolDays(c.now(), numDays) {
		items := []string{placeholderNoMenu}
		if int(day.Month()) == menu.Month && day.Year() == menu.Year {
			if filtered := filterDenylist(grouped[day.Day()], c.denylist); len(filtered) > 0 {
				items = filtered
			}
		}
		out = append(out, MenuDay{Date: day.Format(dateLayout), Items: items})
	}
	return out
}

// groupItemsByDay buckets product names by day of month, trimming trailing
// colons and whitespace and dropping empties and per-day duplicates.
func groupItemsByDay(items []MenuItem) map[int][]string {
	grouped := make(map[int][]string)
	for _, item := range items {
		if item.Day <= 0 {
			continue
		}
		name := strings.TrimRight(strings.TrimSpace(item.Product.Name), ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if contains(grouped[item.Day], name) {
			continue
		}
		grouped[item.Day] = append(grouped[item.Day], name)
	}
	return grouped
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// filterDenylist removes items matching any denylist entry,
// case-insensitively by substring.
func filterDenylist(items, denylist []string) []string {
	if len(denylist) == 0 {
		return items
	}
	kept := make([]string, 0, len(items))
	for _, item := range items {
		lower := strings.ToLower(item)
		blocked := false
		for _, deny := range denylist {
			if strings.Contains(lower, strings.ToLower(deny)) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, item)
		}
	}
	return kept
}
