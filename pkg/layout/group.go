package layout

import (
	"sort"
	"time"

	"github.com/timegrid/timegrid/pkg/event"
)

// Group is an ephemeral cluster of events whose intervals transitively
// overlap. It exists only for the duration of one layout pass.
type Group struct {
	Events []event.Event
}

// GroupOverlapping partitions events into transitive overlap clusters.
// Two events overlap iff start1 < end2 && start2 < end1; grouping is the
// transitive closure of that relation, implemented with union-find so that
// membership never depends on input order.
func GroupOverlapping(events []event.Event) []Group {
	n := len(events)
	if n == 0 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if events[i].Overlaps(events[j]) {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]event.Event)
	roots := make([]int, 0)
	for i, ev := range events {
		r := find(i)
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], ev)
	}

	// Order groups by their earliest member for deterministic output.
	groups := make([]Group, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, Group{Events: byRoot[r]})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return earliestStart(groups[a]).Before(earliestStart(groups[b]))
	})
	return groups
}

func earliestStart(g Group) time.Time {
	earliest := g.Events[0].StartTime
	for _, ev := range g.Events[1:] {
		if ev.StartTime.Before(earliest) {
			earliest = ev.StartTime
		}
	}
	return earliest
}
