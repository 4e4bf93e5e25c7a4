package location

import (
	"context"
	"fmt"

	"github.com/ukydev/taller-finder/internal/models"
)

// StaticLocator stands in for the device location capability on servers and in
// the CLI: it reports a configured position, gated by a permission flag.
type StaticLocator struct {
	point   *models.GeoPoint
	granted bool
}

// NewStaticLocator creates a locator. A nil point means no fix is available.
func NewStaticLocator(point *models.GeoPoint, granted bool) *StaticLocator {
	return &StaticLocator{point: point, granted: granted}
}

// Locate returns the configured point.
func (l *StaticLocator) Locate(ctx context.Context) (models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoPoint{}, err
	}
	if !l.granted {
		return models.GeoPoint{}, models.ErrLocationPermissionDenied
	}
	if l.point == nil {
		return models.GeoPoint{}, fmt.Errorf("%w: no position configured", models.ErrLocationUnavailable)
	}
	return *l.point, nil
}
