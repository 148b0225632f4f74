package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/gpsart"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	fetchGraph gpsart.FetchGraphFunc
}

// NewHandlers creates handlers that generate routes against graphs produced
// by fetchGraph.
func NewHandlers(fetchGraph gpsart.FetchGraphFunc) *Handlers {
	return &Handlers{fetchGraph: fetchGraph}
}

// HandleRoutes handles POST /api/v1/routes.
func (h *Handlers) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validateCoord(req.StartLat, req.StartLon); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if req.TargetDistanceKM <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_target_distance", "target_distance_km")
		return
	}

	result, err := gpsart.GenerateRoutes(r.Context(), gpsart.Request{
		StartLat:         req.StartLat,
		StartLon:         req.StartLon,
		SVGPath:          req.SVGPath,
		TargetDistanceKM: req.TargetDistanceKM,
		EnableRotation:   req.EnableRotation,
		RotationAngles:   req.RotationAngles,
		ReturnNodePaths:  req.ReturnNodePaths,
		FetchGraph:       h.fetchGraph,
	})
	if err != nil {
		switch {
		case errors.Is(err, gpsart.ErrInvalidCoordinate), errors.Is(err, gpsart.ErrEmptyFigure):
			writeError(w, http.StatusBadRequest, "invalid_request", "")
		case errors.Is(err, gpsart.ErrNoViableRoute):
			writeError(w, http.StatusUnprocessableEntity, "no_viable_route", "")
		case errors.Is(err, gpsart.ErrNetworkFetch):
			writeError(w, http.StatusBadGateway, "network_fetch_failed", "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	resp := RouteResponse{
		ScaledDrawing: pointsToLatLng(result.ScaledDrawing),
		BestAngle:     result.BestAngle,
		Validation: ValidationJSON{
			IsValid:           result.Validation.IsValid,
			MinimumDistanceM:  result.Validation.MinimumDistanceM,
			MinimumDistanceKM: result.Validation.MinimumDistanceKM,
			TargetDistanceM:   result.Validation.TargetDistanceM,
			TargetDistanceKM:  result.Validation.TargetDistanceKM,
			ShortageM:         result.Validation.ShortageM,
			ShortageKM:        result.Validation.ShortageKM,
			Message:           result.Validation.Message,
			Options:           result.Validation.Options,
		},
	}
	for _, c := range result.Routes {
		candidate := RouteCandidateJSON{
			ID:              c.ID,
			Angle:           c.Angle,
			DistanceMeters:  c.DistanceM,
			DistanceKM:      c.DistanceM / 1000.0,
			Coordinates:     pointsToLatLng(c.Route),
			SimilarityScore: c.SimilarityScore,
		}
		if req.ReturnNodePaths {
			candidate.NodePath = make([]uint32, len(c.NodePath))
			for i, n := range c.NodePath {
				candidate.NodePath[i] = uint32(n)
			}
		}
		resp.Routes = append(resp.Routes, candidate)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

func pointsToLatLng(points []orb.Point) []LatLngJSON {
	out := make([]LatLngJSON, len(points))
	for i, p := range points {
		out[i] = LatLngJSON{Lat: p.Y(), Lng: p.X()}
	}
	return out
}

func validateCoord(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
