package proximity

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ukydev/taller-finder/internal/geo"
	"github.com/ukydev/taller-finder/internal/models"
)

const mapsSearchURL = "https://www.google.com/maps/search/?"

// Normalize converts a raw provider record into a RankedPlace. index is the
// record position in the provider response and becomes the id when the record
// has none. Records without coordinates are placed at ref and flagged as
// approximate.
func Normalize(raw models.PlaceResult, index int, ref models.GeoPoint, category *models.ServiceCategory) models.RankedPlace {
	place := models.RankedPlace{
		ID:       raw.PlaceID,
		Name:     strings.TrimSpace(raw.Name),
		Address:  firstNonEmpty(raw.Vicinity, raw.FormattedAddress, models.AddressUnavailable),
		Rating:   raw.Rating,
		Category: models.CategoryMechanical,
	}
	if place.ID == "" {
		place.ID = strconv.Itoa(index)
	}
	if raw.UserRatingsTotal != nil {
		place.ReviewCount = *raw.UserRatingsTotal
	}
	if category != nil && category.Valid() {
		place.Category = *category
	}

	if loc, ok := raw.Coordinates(); ok {
		place.Location = loc
		place.DistanceKm = geo.HaversineKm(ref, loc)
	} else {
		place.Location = ref
		place.LocationApproximate = true
	}

	place.ExternalURL = externalURL(place.Name, raw.PlaceID)
	return place
}

func externalURL(name, placeID string) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", name)
	if placeID != "" {
		q.Set("query_place_id", placeID)
	}
	return mapsSearchURL + q.Encode()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
