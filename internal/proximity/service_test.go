package proximity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/taller-finder/internal/models"
)

// MockPlaceSearcher is a mock implementation of PlaceSearcher
type MockPlaceSearcher struct {
	mock.Mock
}

func (m *MockPlaceSearcher) NearbySearch(ctx context.Context, query models.NearbyQuery) ([]models.PlaceResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlaceResult), args.Error(1)
}

// MockGeocoder is a mock implementation of Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (models.GeoPoint, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.GeoPoint), args.Error(1)
}

type locatorFunc func(ctx context.Context) (models.GeoPoint, error)

func (f locatorFunc) Locate(ctx context.Context) (models.GeoPoint, error) {
	return f(ctx)
}

var madrid = models.GeoPoint{Lat: 40.4168, Lng: -3.7038}

func ptr[T any](v T) *T {
	return &v
}

func TestResolveReferencePoint_Address(t *testing.T) {
	t.Run("empty address fails before geocoding", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		svc := NewService(nil, geocoder, nil)

		for _, input := range []string{"", "   ", "\t\n"} {
			_, err := svc.ResolveReferencePoint(context.Background(), FreeTextAddress, input)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		}
		geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	})

	t.Run("address is trimmed and geocoded", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		geocoder.On("Geocode", mock.Anything, "Gran Vía 1, Madrid").Return(madrid, nil)
		svc := NewService(nil, geocoder, nil)

		point, err := svc.ResolveReferencePoint(context.Background(), FreeTextAddress, "  Gran Vía 1, Madrid ")
		require.NoError(t, err)
		assert.Equal(t, madrid, point)
		geocoder.AssertExpectations(t)
	})

	t.Run("no match surfaces address not found", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		geocoder.On("Geocode", mock.Anything, "nowhere").Return(models.GeoPoint{}, models.ErrAddressNotFound)
		svc := NewService(nil, geocoder, nil)

		_, err := svc.ResolveReferencePoint(context.Background(), FreeTextAddress, "nowhere")
		assert.ErrorIs(t, err, models.ErrAddressNotFound)
	})
}

func TestResolveReferencePoint_Device(t *testing.T) {
	tests := []struct {
		name    string
		locator Locator
		want    models.GeoPoint
		wantErr error
	}{
		{
			name:    "fix available",
			locator: locatorFunc(func(context.Context) (models.GeoPoint, error) { return madrid, nil }),
			want:    madrid,
		},
		{
			name: "permission denied",
			locator: locatorFunc(func(context.Context) (models.GeoPoint, error) {
				return models.GeoPoint{}, models.ErrLocationPermissionDenied
			}),
			wantErr: models.ErrLocationPermissionDenied,
		},
		{
			name: "timeout maps to unavailable",
			locator: locatorFunc(func(ctx context.Context) (models.GeoPoint, error) {
				<-ctx.Done()
				return models.GeoPoint{}, ctx.Err()
			}),
			wantErr: models.ErrLocationUnavailable,
		},
		{
			name: "other failure maps to unavailable",
			locator: locatorFunc(func(context.Context) (models.GeoPoint, error) {
				return models.GeoPoint{}, errors.New("gps off")
			}),
			wantErr: models.ErrLocationUnavailable,
		},
		{
			name: "out of range fix is rejected",
			locator: locatorFunc(func(context.Context) (models.GeoPoint, error) {
				return models.GeoPoint{Lat: 91}, nil
			}),
			wantErr: models.ErrLocationUnavailable,
		},
		{
			name:    "no capability",
			wantErr: models.ErrLocationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(nil, nil, tt.locator, WithLocationTimeout(20*time.Millisecond))
			point, err := svc.ResolveReferencePoint(context.Background(), DeviceLocation, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, point)
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("normalizes provider records", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		tires := models.CategoryTires
		searcher.On("NearbySearch", mock.Anything, models.NearbyQuery{Location: madrid, Category: &tires}).Return([]models.PlaceResult{
			{
				PlaceID:          "abc",
				Name:             "Neumáticos Sol",
				Vicinity:         "Calle Mayor 3",
				Geometry:         &models.PlaceGeometry{Location: &models.LatLng{Lat: 40.4150, Lng: -3.7040}},
				Rating:           ptr(4.2),
				UserRatingsTotal: ptr(uint32(12)),
			},
			{Name: "Sin datos"},
		}, nil)

		svc := NewService(searcher, nil, nil)
		places, err := svc.Search(context.Background(), madrid, &tires)
		require.NoError(t, err)
		require.Equal(t, 2, places.Len())

		first := places[0]
		assert.Equal(t, "abc", first.ID)
		assert.Equal(t, models.CategoryTires, first.Category)
		assert.InDelta(t, 0.2008, first.DistanceKm, 0.01)
		assert.False(t, first.LocationApproximate)

		second := places[1]
		assert.Equal(t, "1", second.ID)
		assert.Nil(t, second.Rating)
		assert.Equal(t, uint32(0), second.ReviewCount)
		assert.Equal(t, models.AddressUnavailable, second.Address)
		assert.True(t, second.LocationApproximate)
		assert.Equal(t, madrid, second.Location)
		searcher.AssertExpectations(t)
	})

	t.Run("repeated place ids are collapsed", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		searcher.On("NearbySearch", mock.Anything, mock.Anything).Return([]models.PlaceResult{
			{PlaceID: "dup", Name: "Primero"},
			{PlaceID: "other", Name: "Otro"},
			{PlaceID: "dup", Name: "Repetido"},
			{Name: "Sin id"},
			{Name: "Sin id"},
		}, nil)

		svc := NewService(searcher, nil, nil)
		places, err := svc.Search(context.Background(), madrid, nil)
		require.NoError(t, err)
		require.Equal(t, 4, places.Len())

		ids := make([]string, 0, places.Len())
		for p := range places.All() {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"dup", "other", "3", "4"}, ids)
		assert.Equal(t, "Primero", places[0].Name)
	})

	t.Run("invalid reference never reaches the provider", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		svc := NewService(searcher, nil, nil)

		_, err := svc.Search(context.Background(), models.GeoPoint{Lat: 100}, nil)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		searcher.AssertNotCalled(t, "NearbySearch", mock.Anything, mock.Anything)
	})

	t.Run("taxonomy errors pass through", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		searcher.On("NearbySearch", mock.Anything, mock.Anything).Return(nil, models.ErrMissingCredential)
		svc := NewService(searcher, nil, nil)

		places, err := svc.Search(context.Background(), madrid, nil)
		assert.ErrorIs(t, err, models.ErrMissingCredential)
		assert.Nil(t, places)
	})

	t.Run("unknown errors become provider unavailable", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		searcher.On("NearbySearch", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
		svc := NewService(searcher, nil, nil)

		_, err := svc.Search(context.Background(), madrid, nil)
		assert.ErrorIs(t, err, models.ErrProviderUnavailable)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("results can be iterated more than once", func(t *testing.T) {
		searcher := new(MockPlaceSearcher)
		searcher.On("NearbySearch", mock.Anything, mock.Anything).Return([]models.PlaceResult{
			{PlaceID: "a", Name: "A"}, {PlaceID: "b", Name: "B"},
		}, nil).Once()
		svc := NewService(searcher, nil, nil)

		places, err := svc.Search(context.Background(), madrid, nil)
		require.NoError(t, err)

		var first, second []string
		for p := range places.All() {
			first = append(first, p.ID)
		}
		for p := range places.All() {
			second = append(second, p.ID)
		}
		assert.Equal(t, first, second)
		searcher.AssertNumberOfCalls(t, "NearbySearch", 1)
	})
}
