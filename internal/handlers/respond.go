package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/models"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	if resp.Kind != "" {
		w.Header().Set("X-Error-Kind", resp.Kind)
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error kind to the HTTP status used by the JSON API.
func statusFor(err error) int {
	switch models.ErrorKind(err) {
	case "invalid_input":
		return http.StatusBadRequest
	case "address_not_found":
		return http.StatusNotFound
	case "location_permission_denied":
		return http.StatusForbidden
	case "location_unavailable":
		return http.StatusServiceUnavailable
	case "geocoding_failed", "provider_unavailable":
		return http.StatusBadGateway
	case "timeout":
		return http.StatusGatewayTimeout
	case "canceled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Spanish messages shown by the app, keyed by error kind.
var errorMessages = map[string]string{
	"invalid_input":              "Datos de entrada no válidos",
	"address_not_found":          "No se encontró la dirección indicada",
	"location_permission_denied": "Permiso de ubicación denegado",
	"location_unavailable":       "No se pudo obtener la ubicación",
	"geocoding_failed":           "Error al buscar la dirección",
	"missing_credential":         "Proveedor no configurado en el backend",
	"provider_unavailable":       "Error al contactar con el proveedor",
	"timeout":                    "El proveedor tardó demasiado en responder",
	"canceled":                   "Solicitud cancelada",
	"internal":                   "Error interno",
}

func writeKindError(w http.ResponseWriter, err error) {
	kind := models.ErrorKind(err)
	writeError(w, statusFor(err), ErrorResponse{
		Error:   errorMessages[kind],
		Kind:    kind,
		Details: err.Error(),
	})
}
