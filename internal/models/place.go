package models

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// AddressUnavailable replaces a missing address on a ranked place.
const AddressUnavailable = "Dirección no disponible"

// NearbyQuery is a single request to a place search provider.
type NearbyQuery struct {
	Location GeoPoint
	Category *ServiceCategory
}

// Keyword returns the provider keyword for the query category.
func (q NearbyQuery) Keyword() string {
	return KeywordFor(q.Category)
}

// LatLng is the coordinate shape used by the place provider.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceGeometry wraps the optional location of a provider record.
type PlaceGeometry struct {
	Location *LatLng `json:"location,omitempty"`
}

// PlaceResult is a raw record returned by the place provider. The original JSON is
// kept so the record can be forwarded unchanged.
type PlaceResult struct {
	PlaceID          string         `json:"place_id,omitempty"`
	Name             string         `json:"name"`
	Vicinity         string         `json:"vicinity,omitempty"`
	FormattedAddress string         `json:"formatted_address,omitempty"`
	Geometry         *PlaceGeometry `json:"geometry,omitempty"`
	Rating           *float64       `json:"rating,omitempty"`
	UserRatingsTotal *uint32        `json:"user_ratings_total,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and retains the full payload.
func (p *PlaceResult) UnmarshalJSON(data []byte) error {
	type plain PlaceResult
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PlaceResult(decoded)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the retained payload when there is one.
func (p PlaceResult) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain PlaceResult
	return json.Marshal(plain(p))
}

// Coordinates returns the record location, if the provider supplied one.
func (p PlaceResult) Coordinates() (GeoPoint, bool) {
	if p.Geometry == nil || p.Geometry.Location == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng}, true
}

// RankedPlace is the canonical, provider-independent search result.
type RankedPlace struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Location    GeoPoint        `json:"location"`
	DistanceKm  float64         `json:"distance_km"`
	Rating      *float64        `json:"rating"`
	ReviewCount uint32          `json:"review_count"`
	Category    ServiceCategory `json:"category"`
	ExternalURL string          `json:"external_url"`

	// LocationApproximate is set when the provider gave no coordinates and the
	// reference point was used in their place; DistanceKm is then 0 and not a
	// real measure of proximity.
	LocationApproximate bool `json:"location_approximate"`
}

// Places is an immutable snapshot of ranked results. It can be iterated any
// number of times without contacting the provider again.
type Places []RankedPlace

// All iterates the places in their current order.
func (p Places) All() iter.Seq[RankedPlace] {
	return slices.Values(p)
}

// Len returns the number of places.
func (p Places) Len() int {
	return len(p)
}

// SortOrder selects how ranked places are ordered.
type SortOrder int

const (
	ByDistance SortOrder = iota
	ByRating
)

func (o SortOrder) String() string {
	switch o {
	case ByRating:
		return "rating"
	default:
		return "distance"
	}
}

// ParseSortOrder accepts the client labels ("Proximidad", "Calificación") as well as
// short English and Spanish names. Empty input selects ByDistance.
func ParseSortOrder(value string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "distance", "distancia", "proximidad":
		return ByDistance, nil
	case "rating", "valoracion", "valoración", "calificacion", "calificación", "calificación en google":
		return ByRating, nil
	default:
		return 0, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, value)
	}
}
