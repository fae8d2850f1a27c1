package domain

import (
	"fmt"
	"strings"
)

// Category codes. The set is closed; LookupCategory is the only validity check.
const (
	CategoryGasStations     = "gas_stations"
	CategoryBakeries        = "bakeries"
	CategoryGroceryStores   = "grocery_stores"
	CategoryPublicToilets   = "public_toilets"
	CategoryWaterFountains  = "water_fountains"
	CategoryBicycleShops    = "bicycle_shops"
	CategoryBicycleVending  = "bicycle_vending"
	CategoryVendingMachines = "vending_machines"
	CategoryCampingHotels   = "camping_hotels"
	CategorySportAreas      = "sport_areas"
)

// BBoxPlaceholder is replaced with "south,west,north,east" in query templates.
const BBoxPlaceholder = "{{bbox}}"

// CategorySpec is the static description of one POI category.
type CategorySpec struct {
	Code          string
	QueryTemplate string
	DefaultName   string
	DisplayName   string
	// ShortName prefixes GPX waypoint names, which devices truncate.
	ShortName string
	GPXSymbol string
	// KMLColor is the placemark icon color in KML aabbggrr notation.
	KMLColor    string
	Deduplicate bool
}

var categoryTable = []CategorySpec{
	{
		Code:          CategoryGasStations,
		QueryTemplate: `node["amenity"="fuel"]({{bbox}}); way["amenity"="fuel"]({{bbox}}); node["shop"="fuel"]({{bbox}}); way["shop"="fuel"]({{bbox}});`,
		DefaultName:   "Unnamed Gas Station",
		DisplayName:   "Gas Station",
		ShortName:     "Gas",
		GPXSymbol:     "Fuel",
		KMLColor:      "ff4444ff",
		Deduplicate:   true,
	},
	{
		Code:          CategoryBakeries,
		QueryTemplate: `node["shop"="bakery"]({{bbox}}); way["shop"="bakery"]({{bbox}}); node["amenity"="bakery"]({{bbox}}); way["amenity"="bakery"]({{bbox}});`,
		DefaultName:   "Unnamed Bakery",
		DisplayName:   "Bakery",
		ShortName:     "Bakery",
		GPXSymbol:     "Food",
		KMLColor:      "ff74a5d4",
		Deduplicate:   true,
	},
	{
		Code:          CategoryGroceryStores,
		QueryTemplate: `node["shop"~"^(supermarket|convenience|grocery)$"]({{bbox}}); way["shop"~"^(supermarket|convenience|grocery)$"]({{bbox}});`,
		DefaultName:   "Unnamed Grocery Store",
		DisplayName:   "Grocery Store",
		ShortName:     "Shop",
		GPXSymbol:     "Food",
		KMLColor:      "ff27ae60",
		Deduplicate:   true,
	},
	{
		Code:          CategoryPublicToilets,
		QueryTemplate: `node["amenity"="toilets"]({{bbox}}); way["amenity"="toilets"]({{bbox}});`,
		DefaultName:   "Unnamed Toilet",
		DisplayName:   "Toilet",
		ShortName:     "WC",
		GPXSymbol:     "Restroom",
		KMLColor:      "ffe2904a",
		Deduplicate:   true,
	},
	{
		Code:          CategoryWaterFountains,
		QueryTemplate: `node["amenity"~"^(drinking_water|fountain)$"]({{bbox}}); way["amenity"~"^(drinking_water|fountain)$"]({{bbox}});`,
		DefaultName:   "Unnamed Water Fountain",
		DisplayName:   "Water Fountain",
		ShortName:     "Water",
		GPXSymbol:     "Water",
		KMLColor:      "ffdb9834",
		Deduplicate:   true,
	},
	{
		Code:          CategoryBicycleShops,
		QueryTemplate: `node["shop"="bicycle"]({{bbox}}); way["shop"="bicycle"]({{bbox}}); node["service"="bicycle_repair"]({{bbox}}); way["service"="bicycle_repair"]({{bbox}});`,
		DefaultName:   "Unnamed Bicycle Shop",
		DisplayName:   "Bicycle Shop",
		ShortName:     "Bike",
		GPXSymbol:     "Bike Trail",
		KMLColor:      "ff503e2c",
		Deduplicate:   true,
	},
	{
		Code:          CategoryBicycleVending,
		QueryTemplate: `node["amenity"="bicycle_rental"]["vending"]({{bbox}}); way["amenity"="bicycle_rental"]["vending"]({{bbox}});`,
		DefaultName:   "Unnamed Bicycle Vending",
		DisplayName:   "Bicycle Vending",
		ShortName:     "BikeV",
		GPXSymbol:     "Bike Trail",
		KMLColor:      "ffb6599b",
		Deduplicate:   false,
	},
	{
		Code:          CategoryVendingMachines,
		QueryTemplate: `node["amenity"="vending_machine"]["vending"~"^(drinks|food)$"]({{bbox}}); way["amenity"="vending_machine"]["vending"~"^(drinks|food)$"]({{bbox}});`,
		DefaultName:   "Unnamed Vending Machine",
		DisplayName:   "Vending Machine",
		ShortName:     "Vend",
		GPXSymbol:     "Food",
		KMLColor:      "ff129cf3",
		Deduplicate:   false,
	},
	{
		Code:          CategoryCampingHotels,
		QueryTemplate: `node["tourism"~"^(camp_site|camping|hotel|hostel|guest_house|motel)$"]({{bbox}}); way["tourism"~"^(camp_site|camping|hotel|hostel|guest_house|motel)$"]({{bbox}});`,
		DefaultName:   "Unnamed Accommodation",
		DisplayName:   "Accommodation",
		ShortName:     "Camp",
		GPXSymbol:     "Campground",
		KMLColor:      "ff85a016",
		Deduplicate:   true,
	},
	{
		Code:          CategorySportAreas,
		QueryTemplate: `node["leisure"~"^(sports_centre|stadium|recreation_ground)$"]({{bbox}}); way["leisure"~"^(sports_centre|stadium|recreation_ground)$"]({{bbox}});`,
		DefaultName:   "Unnamed Sport Area",
		DisplayName:   "Sport Area",
		ShortName:     "Sport",
		GPXSymbol:     "Stadium",
		KMLColor:      "ffad448e",
		Deduplicate:   true,
	},
}

var categoryIndex = func() map[string]CategorySpec {
	m := make(map[string]CategorySpec, len(categoryTable))
	for _, c := range categoryTable {
		m[c.Code] = c
	}
	return m
}()

// Categories returns every category in table order.
func Categories() []CategorySpec {
	out := make([]CategorySpec, len(categoryTable))
	copy(out, categoryTable)
	return out
}

// CategoryCodes returns every category code in table order.
func CategoryCodes() []string {
	codes := make([]string, len(categoryTable))
	for i, c := range categoryTable {
		codes[i] = c.Code
	}
	return codes
}

func LookupCategory(code string) (CategorySpec, bool) {
	c, ok := categoryIndex[code]
	return c, ok
}

func IsKnownCategory(code string) bool {
	_, ok := categoryIndex[code]
	return ok
}

// UnknownCategories returns the codes that are not in the table, preserving order.
func UnknownCategories(codes []string) []string {
	var unknown []string
	for _, c := range codes {
		if !IsKnownCategory(c) {
			unknown = append(unknown, c)
		}
	}
	return unknown
}

// CategoryLabel is the plural label shown in progress events, e.g. "Gas Stations".
// camping_hotels is shown as "Accommodation".
func CategoryLabel(code string) string {
	if code == CategoryCampingHotels {
		return "Accommodation"
	}
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// BuildOverpassQuery renders the Overpass QL query for spec within bbox.
func BuildOverpassQuery(spec CategorySpec, bbox BoundingBox) string {
	box := fmt.Sprintf("%v,%v,%v,%v", bbox.South, bbox.West, bbox.North, bbox.East)
	body := strings.ReplaceAll(spec.QueryTemplate, BBoxPlaceholder, box)
	return fmt.Sprintf("[out:json][timeout:60];\n(\n%s\n);\nout center;", body)
}
