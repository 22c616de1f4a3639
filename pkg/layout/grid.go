package layout

import "time"

// DayColumn is the horizontal pixel band one date occupies on screen.
type DayColumn struct {
	Date time.Time
	MinX float64
	MaxX float64
}

// DayGrid maps dates to column bounds. It is populated once per layout pass
// and handed to the gesture engine, so interaction math never has to query
// rendered elements.
type DayGrid struct {
	Columns []DayColumn
}

// NewDayGrid builds a grid of equally wide consecutive day columns starting
// at firstDay.
func NewDayGrid(firstDay time.Time, days int, originX, columnWidth float64) DayGrid {
	columns := make([]DayColumn, 0, days)
	day := time.Date(firstDay.Year(), firstDay.Month(), firstDay.Day(), 0, 0, 0, 0, firstDay.Location())
	for i := 0; i < days; i++ {
		minX := originX + float64(i)*columnWidth
		columns = append(columns, DayColumn{
			Date: day.AddDate(0, 0, i),
			MinX: minX,
			MaxX: minX + columnWidth,
		})
	}
	return DayGrid{Columns: columns}
}

// ColumnAt returns the day column under the given x coordinate.
func (g DayGrid) ColumnAt(x float64) (DayColumn, bool) {
	for _, c := range g.Columns {
		if x >= c.MinX && x < c.MaxX {
			return c, true
		}
	}
	return DayColumn{}, false
}
