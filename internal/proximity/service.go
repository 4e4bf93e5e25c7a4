package proximity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/models"
	"github.com/ukydev/taller-finder/internal/telemetry"
)

// PlaceSearcher queries an external place search provider.
type PlaceSearcher interface {
	NearbySearch(ctx context.Context, query models.NearbyQuery) ([]models.PlaceResult, error)
}

// Geocoder turns a free-text address into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.GeoPoint, error)
}

// Locator reports the current device position.
type Locator interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// Mode selects how the reference point is obtained.
type Mode int

const (
	DeviceLocation Mode = iota
	FreeTextAddress
)

func (m Mode) String() string {
	if m == FreeTextAddress {
		return "address"
	}
	return "device"
}

const defaultLocationTimeout = 10 * time.Second

// Service finds workshops around a reference point.
type Service struct {
	places          PlaceSearcher
	geocoder        Geocoder
	locator         Locator
	locationTimeout time.Duration
	provider        string
}

// Option configures a Service.
type Option func(*Service)

// WithLocationTimeout bounds each device location request.
func WithLocationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.locationTimeout = d
		}
	}
}

// WithProviderName sets the provider label used in metrics.
func WithProviderName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

// NewService creates a proximity search service. geocoder and locator may be nil
// when the corresponding resolution mode is not used.
func NewService(places PlaceSearcher, geocoder Geocoder, locator Locator, opts ...Option) *Service {
	s := &Service{
		places:          places,
		geocoder:        geocoder,
		locator:         locator,
		locationTimeout: defaultLocationTimeout,
		provider:        "places",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveReferencePoint obtains the point that distances are measured from.
func (s *Service) ResolveReferencePoint(ctx context.Context, mode Mode, input string) (models.GeoPoint, error) {
	var (
		point models.GeoPoint
		err   error
	)

	switch mode {
	case DeviceLocation:
		point, err = s.locate(ctx)
	case FreeTextAddress:
		point, err = s.geocode(ctx, input)
	default:
		return models.GeoPoint{}, fmt.Errorf("%w: unknown resolution mode %d", models.ErrInvalidInput, mode)
	}
	if err != nil {
		return models.GeoPoint{}, err
	}

	if err := point.Validate(); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: resolved point: %w", models.ErrLocationUnavailable, err)
	}
	return point, nil
}

func (s *Service) locate(ctx context.Context) (models.GeoPoint, error) {
	if s.locator == nil {
		return models.GeoPoint{}, fmt.Errorf("%w: no location capability", models.ErrLocationUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.locationTimeout)
	defer cancel()

	point, err := s.locator.Locate(ctx)
	if err == nil {
		return point, nil
	}
	if errors.Is(err, models.ErrLocationPermissionDenied) || errors.Is(err, models.ErrLocationUnavailable) {
		return models.GeoPoint{}, err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.GeoPoint{}, fmt.Errorf("%w: no fix within %s", models.ErrLocationUnavailable, s.locationTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return models.GeoPoint{}, err
	}
	return models.GeoPoint{}, fmt.Errorf("%w: %w", models.ErrLocationUnavailable, err)
}

func (s *Service) geocode(ctx context.Context, input string) (models.GeoPoint, error) {
	address := strings.TrimSpace(input)
	if address == "" {
		return models.GeoPoint{}, fmt.Errorf("%w: address must not be empty", models.ErrInvalidInput)
	}
	if s.geocoder == nil {
		return models.GeoPoint{}, fmt.Errorf("%w: no geocoder configured", models.ErrGeocodingFailed)
	}
	return s.geocoder.Geocode(ctx, address)
}

// Nearby runs one provider query and returns the raw records untouched.
func (s *Service) Nearby(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) ([]models.PlaceResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	results, err := s.places.NearbySearch(ctx, models.NearbyQuery{Location: ref, Category: category})
	telemetry.ObserveUpstream(s.provider, models.ErrorKind(err), started)
	if err != nil {
		log.WithFields(log.Fields{
			"reference": ref.String(),
			"keyword":   models.KeywordFor(category),
		}).WithError(err).Warn("Place search failed")
		return nil, classify(err)
	}
	return results, nil
}

// Search queries the provider around ref and returns the normalized records with
// distances computed from ref. Repeated place ids keep their first record.
// The records keep the provider order; use
// SortAndFilter to rank them.
func (s *Service) Search(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) (models.Places, error) {
	raw, err := s.Nearby(ctx, ref, category)
	if err != nil {
		return nil, err
	}

	places := make(models.Places, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, r := range raw {
		if r.PlaceID != "" {
			if _, dup := seen[r.PlaceID]; dup {
				continue
			}
			seen[r.PlaceID] = struct{}{}
		}
		places = append(places, Normalize(r, i, ref, category))
	}
	telemetry.SearchResults.Observe(float64(len(places)))

	log.WithFields(log.Fields{
		"reference": ref.String(),
		"keyword":   models.KeywordFor(category),
		"results":   len(places),
	}).Debug("Place search completed")
	return places, nil
}

// classify keeps taxonomy errors as they are and marks anything else as a
// provider failure.
func classify(err error) error {
	switch {
	case errors.Is(err, models.ErrMissingCredential),
		errors.Is(err, models.ErrProviderUnavailable),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", models.ErrProviderUnavailable, err)
	}
}
