package usecase

import (
	"sort"

	"github.com/mapahead-service/internal/domain"
)

// Deduplicate collapses near-duplicate POIs within each category. Candidates
// are ranked best first and kept only when no already kept POI of the same
// category lies closer than the category radius. Categories that are not
// deduplicated pass through unchanged. Output groups categories in order of
// first appearance.
func Deduplicate(pois []domain.POI, defaultRadiusKm float64, settings map[string]domain.CategorySettings) []domain.POI {
	var order []string
	groups := make(map[string][]domain.POI)
	for _, p := range pois {
		if _, seen := groups[p.Category]; !seen {
			order = append(order, p.Category)
		}
		groups[p.Category] = append(groups[p.Category], p)
	}

	result := make([]domain.POI, 0, len(pois))
	for _, category := range order {
		group := groups[category]

		spec, known := domain.LookupCategory(category)
		if !known || !spec.Deduplicate {
			result = append(result, group...)
			continue
		}

		radius := settings[category].DedupRadius(defaultRadiusKm)
		result = append(result, suppressWithinRadius(rankCandidates(group), radius)...)
	}

	return result
}

type rankedPOI struct {
	poi   domain.POI
	hours float64
}

// rankCandidates sorts by distance to route, then weekly open hours (longer
// first), then brand/operator, external reference, URL and name presence.
func rankCandidates(group []domain.POI) []domain.POI {
	ranked := make([]rankedPOI, len(group))
	for i, p := range group {
		ranked[i] = rankedPOI{poi: p, hours: WeeklyOpenHours(p.OpeningHours)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.poi.DistanceToRoute != b.poi.DistanceToRoute {
			return a.poi.DistanceToRoute < b.poi.DistanceToRoute
		}
		if a.hours != b.hours {
			return a.hours > b.hours
		}
		if x, y := a.poi.HasBrandOrOperator(), b.poi.HasBrandOrOperator(); x != y {
			return x
		}
		if x, y := a.poi.HasExternalReference(), b.poi.HasExternalReference(); x != y {
			return x
		}
		if x, y := a.poi.HasURL(), b.poi.HasURL(); x != y {
			return x
		}
		if x, y := a.poi.HasName(), b.poi.HasName(); x != y {
			return x
		}
		return false
	})

	out := make([]domain.POI, len(ranked))
	for i, r := range ranked {
		out[i] = r.poi
	}
	return out
}

func suppressWithinRadius(sorted []domain.POI, radiusKm float64) []domain.POI {
	kept := make([]domain.POI, 0, len(sorted))
	for _, candidate := range sorted {
		tooClose := false
		for _, k := range kept {
			if domain.GreatCircleDistance(candidate.Coordinate(), k.Coordinate()) < radiusKm {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, candidate)
		}
	}
	return kept
}
