package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"odyssey/internal/model"
	"odyssey/internal/model/requestresponse"
	"odyssey/internal/ports"
	"odyssey/internal/service"
)

type PlacesHandler struct {
	ports.Aggregator
}

func NewPlacesHandler(aggregator ports.Aggregator) *PlacesHandler {
	return &PlacesHandler{aggregator}
}

// FindNearbyPlaces godoc
// @Summary Nearby places
// @Description Searches every requested place type around a point, follows result pages and
// @Description returns the places deduplicated by place_id. Any upstream failure fails the whole search.
// @Tags Places
// @Produce json
// @Param subtypes query string true "Comma separated place types" example(restaurant,museum)
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number true "Radius in miles"
// @Param keyword query string false "Keyword"
// @Success 200 {object} requestresponse.NearbyPlacesResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 502 {object} requestresponse.ErrorResponse "Places search failed"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security CookieAuth
// @Router /find_nearby_places [get]
func (h *PlacesHandler) FindNearbyPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
	radius, errRadius := strconv.ParseFloat(query.Get("radius"), 64)
	if errLat != nil || errLng != nil || errRadius != nil {
		sendErrorResponse(w, http.StatusBadRequest, "lat, lng and radius must be numbers")
		return
	}
	if !finite(lat, lng, radius) {
		sendErrorResponse(w, http.StatusBadRequest, "lat, lng and radius must be finite numbers")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || radius <= 0 {
		sendErrorResponse(w, http.StatusBadRequest, "lat, lng or radius out of range")
		return
	}

	keyword := strings.TrimSpace(query.Get("keyword"))
	requests := make([]model.PageRequest, 0)
	seen := make(map[string]struct{})
	for _, subtype := range strings.Split(query.Get("subtypes"), ",") {
		subtype = strings.TrimSpace(subtype)
		if subtype == "" {
			continue
		}
		if _, ok := seen[subtype]; ok {
			continue
		}
		seen[subtype] = struct{}{}
		requests = append(requests, model.PageRequest{Query: service.NearbyQuery(subtype, lat, lng, radius, keyword)})
	}

	result, err := h.Aggregator.Aggregate(r.Context(), requests)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoPageRequests):
			sendErrorResponse(w, http.StatusBadRequest, "at least one subtype is required")
		case errors.Is(err, model.ErrUpstreamFailure):
			slog.Warn("nearby search failed", slog.Any("error", err))
			sendErrorResponse(w, http.StatusBadGateway, "could not fetch nearby places")
		default:
			slog.Error("nearby search failed", slog.Any("error", err))
			sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.NearbyPlacesResponse{
		Places: result.Places,
		Size:   result.Size,
	})
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
