package gpx

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"
)

var (
	ErrNotUTF8       = errors.New("file encoding error: the file is not valid UTF-8")
	ErrNoTrackPoints = errors.New("the GPX file does not contain any track points")
)

type decoder struct {
	logger *zap.Logger
}

func NewDecoder(logger *zap.Logger) repository.TrackDecoder {
	return &decoder{logger: logger}
}

// Decode collects the points of every segment of every track, in file order.
func (d *decoder) Decode(data []byte) (*domain.Track, error) {
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}

	parsed, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX data: %w", err)
	}

	track := &domain.Track{Name: parsed.Name}
	for _, t := range parsed.Tracks {
		if track.Name == "" {
			track.Name = t.Name
		}
		for _, segment := range t.Segments {
			for _, p := range segment.Points {
				track.Points = append(track.Points, domain.Coordinate{Lat: p.Latitude, Lon: p.Longitude})
				if p.Elevation.NotNull() {
					elevation := p.Elevation.Value()
					track.Elevations = append(track.Elevations, &elevation)
				} else {
					track.Elevations = append(track.Elevations, nil)
				}
			}
		}
	}

	if len(track.Points) == 0 {
		return nil, ErrNoTrackPoints
	}

	d.logger.Debug("GPX decoded",
		zap.String("name", track.Name),
		zap.Int("tracks", len(parsed.Tracks)),
		zap.Int("points", len(track.Points)))

	return track, nil
}
