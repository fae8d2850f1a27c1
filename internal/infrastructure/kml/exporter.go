package kml

import (
	"bytes"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/twpayne/go-kml"
	"go.uber.org/zap"
)

const routeStyleID = "route_style"

var (
	routeColor  = color.RGBA{R: 0x7f, G: 0xb8, B: 0x00, A: 0xff}
	fallbackPin = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

	hourRangePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)
	alwaysOpenHints  = []string{"24/7", "24/24", "always open", "00:00-24:00", "24 hours"}
)

type exporter struct {
	logger *zap.Logger
}

// NewExporter builds a KML document with the route line and one folder of
// placemarks per POI category.
func NewExporter(logger *zap.Logger) repository.RouteExporter {
	return &exporter{logger: logger}
}

func (e *exporter) Format() string {
	return "kml"
}

func (e *exporter) ContentType() string {
	return "application/vnd.google-earth.kml+xml"
}

func (e *exporter) Export(route *domain.Route, pois []domain.POI) ([]byte, error) {
	name := routeName(route)

	doc := kml.Document(kml.Name(name + " with POIs"))

	styles := make(map[string]*kml.SharedElement)
	for _, spec := range domain.Categories() {
		style := kml.SharedStyle("style_"+spec.Code,
			kml.IconStyle(
				kml.Color(parseKMLColor(spec.KMLColor)),
				kml.Scale(1.0),
			),
		)
		styles[spec.Code] = style
		doc.Add(style)
	}
	routeStyle := kml.SharedStyle(routeStyleID,
		kml.LineStyle(
			kml.Color(routeColor),
			kml.Width(4),
		),
	)
	doc.Add(routeStyle)

	coordinates := make([]kml.Coordinate, 0, route.Len())
	for _, p := range route.Points() {
		coordinates = append(coordinates, kml.Coordinate{Lon: p.Lon, Lat: p.Lat})
	}
	doc.Add(kml.Folder(
		kml.Name("Route"),
		kml.Placemark(
			kml.Name(name),
			kml.StyleURL(routeStyle.URL()),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coordinates...),
			),
		),
	))

	for _, group := range groupByCategory(pois) {
		folder := kml.Folder(kml.Name(domain.CategoryLabel(group.category)))
		for _, poi := range group.pois {
			folder.Add(placemark(poi, styles))
		}
		doc.Add(folder)
	}

	var buf bytes.Buffer
	if err := kml.KML(doc).WriteIndent(&buf, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode KML: %w", err)
	}

	e.logger.Debug("KML exported",
		zap.String("route_id", route.ID()),
		zap.Int("placemarks", len(pois)))

	return buf.Bytes(), nil
}

func placemark(poi domain.POI, styles map[string]*kml.SharedElement) kml.Element {
	children := []kml.Element{
		kml.Name(placemarkName(poi)),
		kml.Description(placemarkDescription(poi)),
		kml.Point(kml.Coordinates(kml.Coordinate{Lon: poi.Lon, Lat: poi.Lat})),
	}
	if style, ok := styles[poi.Category]; ok {
		children = append(children, kml.StyleURL(style.URL()))
	} else {
		children = append(children, kml.Style(kml.IconStyle(kml.Color(fallbackPin))))
	}
	return kml.Placemark(children...)
}

type categoryGroup struct {
	category string
	pois     []domain.POI
}

// groupByCategory keeps categories in order of first appearance.
func groupByCategory(pois []domain.POI) []categoryGroup {
	var groups []categoryGroup
	index := make(map[string]int)
	for _, poi := range pois {
		i, ok := index[poi.Category]
		if !ok {
			i = len(groups)
			index[poi.Category] = i
			groups = append(groups, categoryGroup{category: poi.Category})
		}
		groups[i].pois = append(groups[i].pois, poi)
	}
	return groups
}

// placemarkName renders "42km - Gas - Shell (24/7)".
func placemarkName(poi domain.POI) string {
	short := "POI"
	if spec, ok := domain.LookupCategory(poi.Category); ok {
		short = spec.ShortName
	}

	name := poi.Name
	if r := []rune(name); len(r) > 20 {
		name = string(r[:17]) + "..."
	}

	base := fmt.Sprintf("%dkm - %s - %s", poi.RouteKm(), short, name)
	if hours := shortHours(poi.OpeningHours); hours != "" {
		return fmt.Sprintf("%s (%s)", base, hours)
	}
	return base
}

func placemarkDescription(poi domain.POI) string {
	typeName := "POI"
	if spec, ok := domain.LookupCategory(poi.Category); ok {
		typeName = spec.DisplayName
	}

	parts := []string{
		"<b>Type:</b> " + typeName,
		"<b>Distance from route:</b> " + poi.AwayLabel(),
	}
	if poi.OpeningHours != nil && *poi.OpeningHours != "" {
		parts = append(parts, "<b>Opening hours:</b> "+*poi.OpeningHours)
	}
	if poi.PriceRange != nil && *poi.PriceRange != "" {
		parts = append(parts, "<b>Price:</b> "+*poi.PriceRange)
	}
	if poi.URL != nil && *poi.URL != "" {
		parts = append(parts, fmt.Sprintf(`<b>Website:</b> <a href="%s">%s</a>`, *poi.URL, *poi.URL))
	}
	if poi.MapLink != "" {
		parts = append(parts, fmt.Sprintf(`<a href="%s">Open in Google Maps</a>`, poi.MapLink))
	}
	return strings.Join(parts, "<br>")
}

// shortHours condenses opening hours for a placemark label: "24/7", the first
// "8-20" style range, or nothing when the value is more involved.
func shortHours(hours *string) string {
	if hours == nil || *hours == "" {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(*hours))
	for _, hint := range alwaysOpenHints {
		if strings.Contains(lower, hint) {
			return "24/7"
		}
	}
	m := hourRangePattern.FindStringSubmatch(*hours)
	if m == nil {
		return ""
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%d-%d", start, end)
}

// parseKMLColor reads an aabbggrr hex string.
func parseKMLColor(s string) color.Color {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 8 {
		return fallbackPin
	}
	return color.RGBA{
		A: uint8(v >> 24),
		B: uint8(v >> 16),
		G: uint8(v >> 8),
		R: uint8(v),
	}
}

func routeName(route *domain.Route) string {
	if route.Filename() != "" {
		return strings.TrimSuffix(route.Filename(), ".gpx")
	}
	return "Route " + route.ID()
}
