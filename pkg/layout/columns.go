package layout

import (
	"sort"

	"github.com/timegrid/timegrid/pkg/event"
)

// ColumnSlot places one event inside its group's horizontal band.
type ColumnSlot struct {
	Index int
	Total int
}

// ColumnStrategy decides how the events of one overlap group share columns.
// The returned slice is aligned with the group slice passed in.
type ColumnStrategy interface {
	Assign(group []event.Event) []ColumnSlot
}

// StartOrderColumns assigns one column per group member in start-time order
// (stable on id for ties). It deliberately never reclaims columns freed by
// members that do not mutually overlap, matching the original behavior; a
// packing strategy can be swapped in without touching the coordinate mapper.
type StartOrderColumns struct{}

func (StartOrderColumns) Assign(group []event.Event) []ColumnSlot {
	n := len(group)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []ColumnSlot{{Index: 0, Total: 1}}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := group[order[a]], group[order[b]]
		if ea.StartTime.Equal(eb.StartTime) {
			return ea.ID < eb.ID
		}
		return ea.StartTime.Before(eb.StartTime)
	})

	slots := make([]ColumnSlot, n)
	for col, idx := range order {
		slots[idx] = ColumnSlot{Index: col, Total: n}
	}
	return slots
}
