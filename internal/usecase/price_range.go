package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyPattern = regexp.MustCompile(`[€$£¥]`)
	amountPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

const defaultCurrency = "€"

// perUnitTags are checked in order; every match contributes one part.
var perUnitTags = []struct {
	unit string
	keys []string
}{
	{"per person", []string{"fee:per_person", "charge:per_person", "price:per_person"}},
	{"per night", []string{"fee:per_night", "charge:per_night", "price:per_night"}},
	{"per tent", []string{"fee:per_tent", "charge:per_tent", "price:per_tent"}},
	{"per car", []string{"fee:per_car", "charge:per_car", "price:per_car"}},
}

var (
	campingTypes       = map[string]bool{"camp_site": true, "camping": true}
	lodgingTypes       = map[string]bool{"hotel": true, "hostel": true, "guest_house": true, "motel": true}
	pricedPerNightType = map[string]bool{"hotel": true, "hostel": true, "guest_house": true, "motel": true, "camp_site": true, "camping": true}
)

// DerivePriceRange builds a short human readable price hint for an
// accommodation from its OSM tags. It never fails: unknown input gives nil.
//
// Priority: explicit per-unit prices, then price/fee/charge, then camping and
// lodging heuristics (price_range, budget, stars, sub-type), then a plain fee flag.
func DerivePriceRange(tags map[string]string) *string {
	if len(tags) == 0 {
		return nil
	}

	if s := perUnitPrice(tags); s != "" {
		return &s
	}

	if s, ok := explicitPrice(tags); ok {
		return &s
	}

	tourism := strings.ToLower(tags["tourism"])

	if campingTypes[tourism] {
		switch strings.ToLower(tags["fee"]) {
		case "no", "free":
			return price("Free")
		case "yes":
			return price("Fee required")
		}
		if s, ok := rangeTag(tags, "per tent"); ok {
			return &s
		}
	}

	if lodgingTypes[tourism] {
		if s, ok := rangeTag(tags, "per night"); ok {
			return &s
		}
		if strings.ToLower(tags["budget"]) == "yes" {
			return price("Budget")
		}
		if s, ok := starsIndicator(tags["stars"]); ok {
			return &s
		}
		switch tourism {
		case "hostel":
			return price("Budget")
		case "motel":
			return price("Mid-range")
		}
	}

	switch strings.ToLower(tags["fee"]) {
	case "no", "free", "gratis":
		return price("Free")
	case "yes":
		return price("Fee required")
	}

	return nil
}

func perUnitPrice(tags map[string]string) string {
	var parts []string
	for _, group := range perUnitTags {
		for _, key := range group.keys {
			v, ok := tags[key]
			if !ok {
				continue
			}
			currency, nums := currencyAndAmounts(strings.TrimSpace(v))
			if len(nums) > 0 {
				parts = append(parts, formatPrice(nums[0], currency, group.unit))
			}
		}
	}
	return strings.Join(parts, ", ")
}

// explicitPrice handles the first non-empty of price, fee and charge.
// "yes" carries no amount and falls through to the heuristics.
func explicitPrice(tags map[string]string) (string, bool) {
	raw := firstNonEmpty(tags, "price", "fee", "charge")
	if raw == "" {
		return "", false
	}
	value := strings.TrimSpace(raw)

	switch strings.ToLower(value) {
	case "no", "free", "gratis", "0":
		return "Free", true
	case "yes":
		return "", false
	}

	currency, nums := currencyAndAmounts(value)
	switch {
	case strings.Contains(value, "-") && len(nums) >= 2:
		return currency + nums[0] + "-" + nums[1], true
	case len(nums) >= 1:
		unit := ""
		if pricedPerNightType[strings.ToLower(tags["tourism"])] {
			unit = "per night"
		}
		return formatPrice(nums[0], currency, unit), true
	default:
		return value, true
	}
}

// rangeTag reads price_range or price:range and appends unit.
func rangeTag(tags map[string]string, unit string) (string, bool) {
	raw := firstNonEmpty(tags, "price_range", "price:range")
	if raw == "" {
		return "", false
	}
	currency, nums := currencyAndAmounts(raw)
	switch {
	case len(nums) >= 2:
		return currency + nums[0] + "-" + nums[1] + " " + unit, true
	case len(nums) == 1:
		return formatPrice(nums[0], currency, unit), true
	default:
		return raw, true
	}
}

func starsIndicator(stars string) (string, bool) {
	if stars == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(stars), 64)
	if err != nil {
		return "", false
	}
	switch n := int(f); {
	case n >= 4:
		return "Expensive", true
	case n >= 3:
		return "Mid-range", true
	case n >= 1:
		return "Budget", true
	}
	return "", false
}

func currencyAndAmounts(s string) (string, []string) {
	currency := currencyPattern.FindString(s)
	if currency == "" {
		currency = defaultCurrency
	}
	return currency, amountPattern.FindAllString(s, -1)
}

// formatPrice drops leading zeros of whole amounts and keeps decimals verbatim.
func formatPrice(amount, currency, unit string) string {
	suffix := ""
	if unit != "" {
		suffix = " " + unit
	}
	if !strings.Contains(amount, ".") {
		if n, err := strconv.ParseInt(amount, 10, 64); err == nil {
			return currency + strconv.FormatInt(n, 10) + suffix
		}
	}
	return currency + amount + suffix
}

func firstNonEmpty(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

func price(s string) *string {
	return &s
}
