package usecase

import (
	"fmt"
	"sort"

	"github.com/mapahead-service/internal/domain"
)

// ConvertElements turns raw Overpass elements of one category into POIs within
// maxDistanceKm of the route, sorted by distance along the route. Elements
// without a resolvable position are skipped.
func ConvertElements(route *domain.Route, category domain.CategorySpec, elements []domain.OverpassElement, maxDistanceKm float64) []domain.POI {
	pois := make([]domain.POI, 0, len(elements))

	for _, el := range elements {
		pos, ok := el.Coordinate()
		if !ok {
			continue
		}

		idx := route.NearestIndex(pos)
		distanceToRoute := domain.GreatCircleDistance(pos, route.Point(idx))
		if distanceToRoute > maxDistanceKm {
			continue
		}

		poi := domain.POI{
			Lat:             pos.Lat,
			Lon:             pos.Lon,
			Name:            category.DefaultName,
			DistanceToRoute: distanceToRoute,
			DistanceOnRoute: route.DistanceAt(idx),
			Category:        category.Code,
			OpeningHours:    el.Tag("opening_hours"),
			URL:             el.Tag("website"),
			MapLink:         MapLink(pos),
			Brand:           el.Tag("brand"),
			Operator:        el.Tag("operator"),
			Wikipedia:       el.Tag("wikipedia"),
			Wikidata:        el.Tag("wikidata"),
		}
		if name := el.Tag("name"); name != nil {
			poi.Name = *name
		}
		if poi.URL == nil {
			poi.URL = el.Tag("url")
		}
		if category.Code == domain.CategoryCampingHotels {
			poi.PriceRange = DerivePriceRange(el.Tags)
		}

		pois = append(pois, poi)
	}

	SortByDistanceOnRoute(pois)
	return pois
}

// MapLink is the Google Maps search URL for c.
func MapLink(c domain.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", c.Lat, c.Lon)
}

// SortByDistanceOnRoute orders POIs by their position along the route, keeping
// the relative order of equal positions.
func SortByDistanceOnRoute(pois []domain.POI) {
	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].DistanceOnRoute < pois[j].DistanceOnRoute
	})
}
