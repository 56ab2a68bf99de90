// Package export renders month schedules as printable HTML pages.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"lso-service/internal/calendar"
	"lso-service/internal/grid"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

var monthNames = [...]string{
	time.January:   "styczeń",
	time.February:  "luty",
	time.March:     "marzec",
	time.April:     "kwiecień",
	time.May:       "maj",
	time.June:      "czerwiec",
	time.July:      "lipiec",
	time.August:    "sierpień",
	time.September: "wrzesień",
	time.October:   "październik",
	time.November:  "listopad",
	time.December:  "grudzień",
}

// MonthName returns the Polish name of m's month.
func MonthName(m calendar.Month) string {
	if m.Month < time.January || m.Month > time.December {
		return m.String()
	}
	return monthNames[m.Month]
}

const style = `@page { size: A4 portrait; margin: 10mm; }
body { font-family: Arial, sans-serif; font-size: 10px; color: #000; background: #fff; }
.parish { font-size: 11px; margin: 0 0 4px; }
h1 { font-size: 13px; margin-bottom: 10px; }
.table-row { display: flex; gap: 15px; margin-bottom: 12px; page-break-inside: avoid; }
.table-col { flex: 1; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #000; padding: 2px 4px; text-align: center; }
th:first-child, td:first-child { text-align: left; white-space: nowrap; }`

// WeekdayMarkdown renders every non-empty (weekday, slot) section of g as a
// markdown table with dates as columns.
func WeekdayMarkdown(g grid.WeekdayGrid) []string {
	var sections []string
	for _, sec := range g.Sections {
		if len(sec.Rows) == 0 {
			continue
		}
		sections = append(sections, sectionMarkdown(sec))
	}
	return sections
}

func sectionMarkdown(sec grid.Section) string {
	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(escape(sec.DayName + " " + sec.Time))
	for _, d := range sec.Dates {
		b.WriteString(" | ")
		b.WriteString(strconv.Itoa(d.Day))
	}
	b.WriteString(" |\n|---")
	for range sec.Dates {
		b.WriteString("|:-:")
	}
	b.WriteString("|\n")

	for _, row := range sec.Rows {
		b.WriteString("| ")
		b.WriteString(escape(row.Name))
		for _, c := range row.Cells {
			b.WriteString(" | ")
			b.WriteString(c.Symbol)
		}
		b.WriteString(" |\n")
	}

	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WeekdayHTML renders the weekday schedule as a standalone HTML document,
// two tables per row. A non-empty parish is printed above the title.
func WeekdayHTML(g grid.WeekdayGrid, parish string) ([]byte, error) {
	const op = "export.WeekdayHTML"

	sections := WeekdayMarkdown(g)

	tables := make([]string, 0, len(sections))
	for _, sec := range sections {
		var buf bytes.Buffer
		if err := md.Convert([]byte(sec), &buf); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tables = append(tables, buf.String())
	}

	title := fmt.Sprintf("Grafik - %s %d", strings.ToUpper(MonthName(g.Month)), g.Month.Year)

	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n",
		html.EscapeString(title), style)
	if parish != "" {
		fmt.Fprintf(&out, "<p class=\"parish\">%s</p>\n", html.EscapeString(parish))
	}
	fmt.Fprintf(&out, "<h1>%s</h1>\n", html.EscapeString(title))

	for i := 0; i < len(tables); i += 2 {
		out.WriteString("<div class=\"table-row\">\n<div class=\"table-col\">\n")
		out.WriteString(tables[i])
		out.WriteString("</div>\n<div class=\"table-col\">\n")
		if i+1 < len(tables) {
			out.WriteString(tables[i+1])
		}
		out.WriteString("</div>\n</div>\n")
	}

	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
