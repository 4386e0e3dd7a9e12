package service

import (
	"sort"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
)

// PageOrder places one uploaded page, identified by its object name, at a sequence.
type PageOrder struct {
	ID       uint
	Name     string
	Sequence int
}

func pageOrders(pages model.ProgramPageList) []PageOrder {
	orders := make([]PageOrder, 0, len(pages))
	for _, p := range pages {
		orders = append(orders, PageOrder{ID: p.ID, Name: p.Name, Sequence: p.Sequence})
	}
	return orders
}

// NeedsRegeneration reports whether the merged document must be rebuilt: when none exists or
// when the submitted ordering differs from the stored one on any (name, sequence) pair.
// current never includes the merged document itself.
func NeedsRegeneration(current, submitted []PageOrder, hasGenerated bool) bool {
	if !hasGenerated {
		return true
	}
	if len(current) != len(submitted) {
		return true
	}

	a, b := sortedOrders(current), sortedOrders(submitted)
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Sequence != b[i].Sequence {
			return true
		}
	}
	return false
}

func sortedOrders(orders []PageOrder) []PageOrder {
	sorted := append([]PageOrder(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Sequence != sorted[j].Sequence {
			return sorted[i].Sequence < sorted[j].Sequence
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
