package proximity

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ukydev/taller-finder/internal/models"
)

// SortAndFilter returns a new ordered snapshot of places, keeping only those of
// category when it is non-nil. The input is not modified.
func SortAndFilter(places models.Places, order models.SortOrder, category *models.ServiceCategory) models.Places {
	out := make(models.Places, 0, len(places))
	for p := range places.All() {
		if category != nil && p.Category != *category {
			continue
		}
		out = append(out, p)
	}

	switch order {
	case models.ByRating:
		slices.SortStableFunc(out, byRating)
	default:
		slices.SortStableFunc(out, byDistance)
	}
	return out
}

func byDistance(a, b models.RankedPlace) int {
	if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
		return c
	}
	return compareNames(a, b)
}

func byRating(a, b models.RankedPlace) int {
	switch {
	case a.Rating == nil && b.Rating != nil:
		return 1
	case a.Rating != nil && b.Rating == nil:
		return -1
	case a.Rating != nil && b.Rating != nil:
		if c := cmp.Compare(*b.Rating, *a.Rating); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(b.ReviewCount, a.ReviewCount); c != 0 {
		return c
	}
	return compareNames(a, b)
}

func compareNames(a, b models.RankedPlace) int {
	return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}
