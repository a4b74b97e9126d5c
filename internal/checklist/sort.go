package checklist

import (
	"sort"

	"lifeplan/internal/model"
)

// unlistedPriority places areas missing from the priority map after every
// listed area.
const unlistedPriority = 999

func sizeRank(s model.Size) int {
	switch s {
	case model.SizeQuick:
		return 1
	case model.SizeLong:
		return 3
	default:
		return 2
	}
}

// SortItems returns a sorted copy of items: incomplete items first, ordered
// by area priority then size (quick, medium, long; unset counts as medium),
// followed by completed items ordered by completedAt. Ties keep their
// original relative order.
func SortItems(items []model.ChecklistItem, areaPriority map[string]int) []model.ChecklistItem {
	incomplete := make([]model.ChecklistItem, 0, len(items))
	complete := make([]model.ChecklistItem, 0)
	for _, it := range items {
		if it.Completed {
			complete = append(complete, it)
		} else {
			incomplete = append(incomplete, it)
		}
	}

	priority := func(area string) int {
		if p, ok := areaPriority[area]; ok {
			return p
		}
		return unlistedPriority
	}

	sort.SliceStable(incomplete, func(i, j int) bool {
		pi, pj := priority(incomplete[i].Area), priority(incomplete[j].Area)
		if pi != pj {
			return pi < pj
		}
		return sizeRank(incomplete[i].Size) < sizeRank(incomplete[j].Size)
	})
	sort.SliceStable(complete, func(i, j int) bool {
		return complete[i].CompletedAt < complete[j].CompletedAt
	})

	return append(incomplete, complete...)
}
