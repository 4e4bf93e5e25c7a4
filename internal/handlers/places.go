package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/db"
	"github.com/ukydev/taller-finder/internal/events"
	"github.com/ukydev/taller-finder/internal/middleware"
	"github.com/ukydev/taller-finder/internal/models"
	"github.com/ukydev/taller-finder/internal/proximity"
)

const (
	msgMissingCoordinates = "Faltan coordenadas"
	msgInvalidCoordinates = "Coordenadas inválidas"
	msgMissingPlacesKey   = "API Key de Google Maps no configurada en el backend"
	msgPlacesUpstream     = "Error al contactar con Google Maps"
)

// ProximityService is the workshop search used by PlacesHandler.
type ProximityService interface {
	ResolveReferencePoint(ctx context.Context, mode proximity.Mode, input string) (models.GeoPoint, error)
	Nearby(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) ([]models.PlaceResult, error)
	Search(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) (models.Places, error)
}

// PlacesHandler serves the workshop endpoints.
type PlacesHandler struct {
	service   ProximityService
	history   db.HistoryCollection
	publisher events.Publisher
}

// NewPlacesHandler creates the handler. history may be nil when accounts are
// disabled; publisher may be nil when no broker is configured.
func NewPlacesHandler(service ProximityService, history db.HistoryCollection, publisher events.Publisher) *PlacesHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PlacesHandler{service: service, history: history, publisher: publisher}
}

// RankedResponse is the body of the ranked search endpoint.
type RankedResponse struct {
	Reference models.GeoPoint      `json:"reference"`
	Order     string               `json:"order"`
	Category  string               `json:"category,omitempty"`
	Results   []models.RankedPlace `json:"results"`
}

// parseCoordinates reads lat and lng. present is false when either is missing.
func parseCoordinates(r *http.Request) (point models.GeoPoint, present bool, err error) {
	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lngStr := strings.TrimSpace(r.URL.Query().Get("lng"))
	if latStr == "" || lngStr == "" {
		return models.GeoPoint{}, false, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.GeoPoint{}, true, fmt.Errorf("%w: latitude %q", models.ErrInvalidInput, latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return models.GeoPoint{}, true, fmt.Errorf("%w: longitude %q", models.ErrInvalidInput, lngStr)
	}
	point = models.GeoPoint{Lat: lat, Lng: lng}
	return point, true, point.Validate()
}

func categoryParam(r *http.Request) *models.ServiceCategory {
	label := r.URL.Query().Get("tipo")
	category, known := models.CategoryFromLabel(label)
	if !known {
		log.WithField("tipo", label).Debug("Unknown category label, using mechanical")
	}
	return category
}

// Workshops is the pass-through endpoint: it forwards the provider records
// unchanged as a JSON array.
func (h *PlacesHandler) Workshops(w http.ResponseWriter, r *http.Request) {
	ref, present, err := parseCoordinates(r)
	if !present {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: msgMissingCoordinates, Kind: "invalid_input"})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidCoordinates, Kind: "invalid_input"})
		return
	}

	results, err := h.service.Nearby(r.Context(), ref, categoryParam(r))
	if err != nil {
		if errors.Is(err, models.ErrMissingCredential) {
			writeError(w, http.StatusInternalServerError, ErrorResponse{Error: msgMissingPlacesKey, Kind: "missing_credential"})
			return
		}
		writeError(w, http.StatusInternalServerError, ErrorResponse{
			Error:   msgPlacesUpstream,
			Kind:    models.ErrorKind(err),
			Details: err.Error(),
		})
		return
	}

	if results == nil {
		results = []models.PlaceResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Ranked resolves the reference point, searches, and returns canonical records
// ordered by ?orden. The reference comes from ?direccion, else from ?lat/?lng,
// else from the device location.
func (h *PlacesHandler) Ranked(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	order, err := models.ParseSortOrder(q.Get("orden"))
	if err != nil {
		writeKindError(w, err)
		return
	}
	category := categoryParam(r)

	ref, err := h.resolve(r)
	if err != nil {
		writeKindError(w, err)
		return
	}

	places, err := h.service.Search(r.Context(), ref, category)
	if err != nil {
		writeKindError(w, err)
		return
	}
	ranked := proximity.SortAndFilter(places, order, category)

	resp := RankedResponse{
		Reference: ref,
		Order:     order.String(),
		Results:   ranked,
	}
	if category != nil {
		resp.Category = category.Label()
	}

	h.afterSearch(r, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *PlacesHandler) resolve(r *http.Request) (models.GeoPoint, error) {
	if address, ok := r.URL.Query()["direccion"]; ok {
		return h.service.ResolveReferencePoint(r.Context(), proximity.FreeTextAddress, strings.Join(address, " "))
	}

	ref, present, err := parseCoordinates(r)
	if present {
		return ref, err
	}
	return h.service.ResolveReferencePoint(r.Context(), proximity.DeviceLocation, "")
}

func (h *PlacesHandler) afterSearch(r *http.Request, resp RankedResponse) {
	requestID := middleware.GetRequestID(r.Context())
	label := resp.Category
	if label == "" {
		label = models.CategoryMechanical.Label()
	}

	h.publisher.PublishSearch(r.Context(), events.SearchEvent{
		RequestID: requestID,
		Category:  label,
		Order:     resp.Order,
		Reference: resp.Reference,
		Results:   len(resp.Results),
	})

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok || h.history == nil {
		return
	}
	record := models.SearchRecord{
		UserID:    claims.UserID,
		Category:  models.HistoryWorkshops,
		Detail:    fmt.Sprintf("%s cerca de %s (%d resultados)", label, resp.Reference, len(resp.Results)),
		RequestID: requestID,
	}
	if err := h.history.InsertRecord(r.Context(), record); err != nil {
		log.WithField("user_id", claims.UserID).WithError(err).Warn("Failed to record search history")
	}
}
