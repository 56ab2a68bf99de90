// Package grid assembles month schedules into row/column view models: rows
// are recurring assignees, columns are concrete dates, cells are marks.
package grid

import (
	"cmp"
	"slices"

	"lso-service/internal/attendance"
	"lso-service/internal/calendar"
	"lso-service/internal/models"
	"lso-service/internal/roster"
)

// NoGroupName labels active ministrants without a guild.
const NoGroupName = "Bez gildii"

type Cell struct {
	Date      calendar.Date   `json:"date"`
	IsPresent attendance.Mark `json:"is_present"`
	Symbol    string          `json:"symbol"`
}

type Row struct {
	TemplateID   int64  `json:"template_id,omitempty"`
	MinistrantID int64  `json:"ministrant_id"`
	Name         string `json:"name"`
	Cells        []Cell `json:"cells"`
}

// Section is one (weekday, slot) table of the weekday schedule.
type Section struct {
	Weekday calendar.Weekday `json:"weekday"`
	DayName string           `json:"day_name"`
	Slot    roster.Slot      `json:"time_slot"`
	Time    string           `json:"time"`
	Dates   []calendar.Date  `json:"dates"`
	Rows    []Row            `json:"rows"`
}

type WeekdayGrid struct {
	Month    calendar.Month `json:"month"`
	Sections []Section      `json:"sections"`
}

// GroupSection is one guild's table of the Sunday schedule.
type GroupSection struct {
	GroupID   *int64          `json:"group_id"`
	GroupName string          `json:"group_name"`
	Dates     []calendar.Date `json:"dates"`
	Rows      []Row           `json:"rows"`
}

type SundayGrid struct {
	Month    calendar.Month `json:"month"`
	Sections []GroupSection `json:"sections"`
}

// Weekday builds the Monday to Saturday schedule of month m. Templates not
// active in m are ignored, as are templates of unknown ministrants.
func Weekday(
	m calendar.Month,
	templates []roster.Template,
	ministrants map[int64]models.Ministrant,
	marks map[attendance.Key]attendance.Mark,
) (WeekdayGrid, error) {
	active := roster.Active(templates, &m)

	g := WeekdayGrid{Month: m, Sections: make([]Section, 0, len(calendar.Weekdays)*len(roster.Slots))}
	for _, wd := range calendar.Weekdays {
		dates, err := calendar.Occurrences(m, wd)
		if err != nil {
			return WeekdayGrid{}, err
		}

		for _, slot := range roster.Slots {
			sec := Section{
				Weekday: wd,
				DayName: wd.String(),
				Slot:    slot,
				Time:    slot.Time(),
				Dates:   dates,
				Rows:    []Row{},
			}

			for _, t := range roster.ForSlot(active, wd, slot) {
				mn, ok := ministrants[t.MinistrantID]
				if !ok {
					continue
				}
				row := Row{TemplateID: t.ID, MinistrantID: mn.ID, Name: mn.FullName()}
				row.Cells = cells(dates, func(d calendar.Date) attendance.Mark {
					return marks[attendance.Key{MinistrantID: mn.ID, Date: d, Slot: slot}]
				})
				sec.Rows = append(sec.Rows, row)
			}
			sortRows(sec.Rows)

			g.Sections = append(g.Sections, sec)
		}
	}

	return g, nil
}

// Sunday builds one table per guild with the month's Sundays as columns and
// the guild's active ministrants as rows.
func Sunday(
	m calendar.Month,
	groups []models.Group,
	ministrants []models.Ministrant,
	marks map[attendance.Key]attendance.Mark,
) (SundayGrid, error) {
	sundays, err := calendar.Sundays(m)
	if err != nil {
		return SundayGrid{}, err
	}

	byGroup := make(map[int64][]models.Ministrant)
	var ungrouped []models.Ministrant
	for _, mn := range ministrants {
		if !mn.IsActive {
			continue
		}
		if mn.GroupID == nil {
			ungrouped = append(ungrouped, mn)
			continue
		}
		byGroup[*mn.GroupID] = append(byGroup[*mn.GroupID], mn)
	}

	row := func(mn models.Ministrant) Row {
		return Row{
			MinistrantID: mn.ID,
			Name:         mn.FullName(),
			Cells: cells(sundays, func(d calendar.Date) attendance.Mark {
				return marks[attendance.Key{MinistrantID: mn.ID, Date: d}]
			}),
		}
	}

	g := SundayGrid{Month: m, Sections: make([]GroupSection, 0, len(groups)+1)}
	for _, gr := range groups {
		sec := GroupSection{GroupID: &gr.ID, GroupName: gr.Name, Dates: sundays, Rows: []Row{}}
		for _, mn := range byGroup[gr.ID] {
			sec.Rows = append(sec.Rows, row(mn))
		}
		sortRows(sec.Rows)
		g.Sections = append(g.Sections, sec)
	}

	if len(ungrouped) > 0 {
		sec := GroupSection{GroupName: NoGroupName, Dates: sundays, Rows: make([]Row, 0, len(ungrouped))}
		for _, mn := range ungrouped {
			sec.Rows = append(sec.Rows, row(mn))
		}
		sortRows(sec.Rows)
		g.Sections = append(g.Sections, sec)
	}

	return g, nil
}

// Available returns the active ministrants not yet assigned to the weekday
// and slot by any of templates, sorted by name.
func Available(ministrants []models.Ministrant, templates []roster.Template, wd calendar.Weekday, slot roster.Slot) []models.Ministrant {
	assigned := roster.Assigned(templates, wd, slot)

	out := make([]models.Ministrant, 0, len(ministrants))
	for _, mn := range ministrants {
		if !mn.IsActive {
			continue
		}
		if _, ok := assigned[mn.ID]; ok {
			continue
		}
		out = append(out, mn)
	}

	slices.SortStableFunc(out, func(a, b models.Ministrant) int {
		return cmp.Compare(a.FullName(), b.FullName())
	})
	return out
}

func cells(dates []calendar.Date, mark func(calendar.Date) attendance.Mark) []Cell {
	out := make([]Cell, 0, len(dates))
	for _, d := range dates {
		m := mark(d)
		out = append(out, Cell{Date: d, IsPresent: m, Symbol: m.Symbol()})
	}
	return out
}

func sortRows(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(a.Name, b.Name)
	})
}
