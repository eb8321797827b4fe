package schoolmenu

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// Wednesday, chosen so a five-day window spans a weekend and a month
// boundary: Aug 26, 27, 28, 31 and Sep 1.
var testToday = time.Date(2026, time.August, 26, 7, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func dates(days []MenuDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out
}

func assertDates(t *testing.T, days []MenuDay, want ...string) {
	t.Helper()
	if len(days) != len(want) {
		t.Fatalf("got %d days %v, want %v", len(days), dates(days), want)
	}
	for i, w := range want {
		if days[i].Date != w {
			t.Fatalf("day %d = %s, want %s (all: %v)", i, days[i].Date, w, dates(days))
		}
	}
}

func TestMenuForDays_InvalidDayCount(t *testing.T) {
	c := NewClient(noLimit(), WithClock(fixedClock(testToday)))
	for _, n := range []int{0, -1, 6, 100} {
		if _, err := c.MenuForDays(context.Background(), n, Source{}); !errors.Is(err, ErrInvalidDayCount) {
			t.Fatalf("numDays=%d: want ErrInvalidDayCount, got %v", n, err)
		}
	}
}

func TestMenuForDays_NoSourceUsesFallback(t *testing.T) {
	c := NewClient(noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 4, Source{})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	assertDates(t, days, "2026-08-26", "2026-08-27", "2026-08-28", "2026-08-31")
	for _, d := range days {
		if len(d.Items) != 1 || d.Items[0] != placeholderUnavailable {
			t.Fatalf("day %s items=%v", d.Date, d.Items)
		}
	}
}

func TestMenuForDays_WeekendStartSkipsToMonday(t *testing.T) {
	saturday := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	c := NewClient(noLimit(), WithClock(fixedClock(saturday)))
	days, err := c.MenuForDays(context.Background(), 2, Source{})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	assertDates(t, days, "2026-08-31", "2026-09-01")
}

func TestMenuForDays_CustomFallbackProvider(t *testing.T) {
	c := NewClient(noLimit(), WithClock(fixedClock(testToday)),
		WithFallback(FallbackFunc(func(day time.Time) []string {
			return []string{"Leftovers", day.Format("Mon")}
		})))
	days, err := c.MenuForDays(context.Background(), 1, Source{})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	if len(days) != 1 || len(days[0].Items) != 2 || days[0].Items[0] != "Leftovers" || days[0].Items[1] != "Wed" {
		t.Fatalf("days=%+v", days)
	}
}

func menuServer(t *testing.T, calls *int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
}

func TestMenuForDays_FiltersDenylistAndDuplicates(t *testing.T) {
	var calls int
	srv := menuServer(t, &calls, `{"data":{"menu":{"month":8,"year":2026,"items":[
		{"day":26,"product":{"name":"Pizza"}},
		{"day":26,"product":{"name":"Pizza"}},
		{"day":26,"product":{"name":"Cheese Tacos: "}},
		{"day":26,"product":{"name":"   "}},
		{"day":26,"product":{"name":"Straus Organic 1% Milk"}},
		{"day":26,"product":{"name":"Garden Bar: Fresh Fruits and Veggies"}},
		{"day":27,"product":{"name":"low-fat milk"}}
	]}}}`)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 2, Source{MenuID: "abc"})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one API call, got %d", calls)
	}
	assertDates(t, days, "2026-08-26", "2026-08-27")
	if len(days[0].Items) != 2 || days[0].Items[0] != "Pizza" || days[0].Items[1] != "Cheese Tacos" {
		t.Fatalf("day items=%v", days[0].Items)
	}
	// Day 27 had only a denylisted item, so it degrades to the placeholder.
	if len(days[1].Items) != 1 || days[1].Items[0] != placeholderNoMenu {
		t.Fatalf("filtered-empty day items=%v", days[1].Items)
	}
}

func TestMenuForDays_MonthBoundaryPlaceholder(t *testing.T) {
	srv := menuServer(t, nil, `{"data":{"menu":{"month":8,"year":2026,"items":[
		{"day":26,"product":{"name":"Pizza"}},
		{"day":1,"product":{"name":"September Surprise"}}
	]}}}`)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 5, Source{MenuID: "abc"})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	assertDates(t, days, "2026-08-26", "2026-08-27", "2026-08-28", "2026-08-31", "2026-09-01")
	if days[0].Items[0] != "Pizza" {
		t.Fatalf("today items=%v", days[0].Items)
	}
	// Sep 1 is outside the menu's month even though day 1 has items.
	if last := days[4]; len(last.Items) != 1 || last.Items[0] != placeholderNoMenu {
		t.Fatalf("out-of-month day items=%v", last.Items)
	}
}

func TestMenuForDays_WrongMonthAllPlaceholder(t *testing.T) {
	srv := menuServer(t, nil, `{"data":{"menu":{"month":9,"year":2026,"items":[
		{"day":26,"product":{"name":"Pizza"}}
	]}}}`)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 3, Source{MenuID: "abc"})
	if err != nil {
		t.Fatalf("MenuForDays: %v", err)
	}
	for _, d := range days {
		if len(d.Items) != 1 || d.Items[0] != placeholderNoMenu {
			t.Fatalf("day %s items=%v", d.Date, d.Items)
		}
	}
}

func TestMenuForDays_ServerErrorFallsBackAllDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 3, Source{MenuID: "abc"})
	if err != nil {
		t.Fatalf("fetch failure must not propagate: %v", err)
	}
	assertDates(t, days, "2026-08-26", "2026-08-27", "2026-08-28")
	for _, d := range days {
		if len(d.Items) != 1 || d.Items[0] != placeholderUnavailable {
			t.Fatalf("day %s items=%v, want full fallback", d.Date, d.Items)
		}
	}
}

func TestMenuForDays_TransportErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(WithBaseURL(srv.URL), noLimit(), WithClock(fixedClock(testToday)))
	days, err := c.MenuForDays(context.Background(), 2, Source{MenuID: "abc"})
	if err != nil {
		t.Fatalf("transport failure must not propagate: %v", err)
	}
	for _, d := range days {
		if len(d.Items) != 1 || d.Items[0] != placeholderUnavailable {
			t.Fatalf("day %s items=%v", d.Date, d.Items)
		}
	}
}

func TestSchoolDays_NeverContainsWeekends(t *testing.T) {
	for offset := 0; offset < 7; offset++ {
		start := testToday.AddDate(0, 0, offset)
		for _, d := range schoolDays(start, 5) {
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("start %s produced weekend day %s", start.Format(dateLayout), d.Format(dateLayout))
			}
		}
	}
}

func TestGroupItemsByDay_DropsInvalidDays(t *testing.T) {
	grouped := groupItemsByDay([]MenuItem{
		{Day: 0, Product: Product{Name: "Ghost"}},
		{Day: -3, Product: Product{Name: "Ghost"}},
		{Day: 4, Product: Product{Name: "Soup"}},
	})
	if len(grouped) != 1 || len(grouped[4]) != 1 || grouped[4][0] != "Soup" {
		t.Fatalf("grouped=%v", grouped)
	}
}
