// Package gpsart orchestrates the end-to-end GPS-art pipeline: parsing a
// drawn figure, projecting it near a start point, searching placements and
// rotations for the route that best traces it, and ranking the results.
package gpsart

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/azybler/gpsart/pkg/elevation"
	"github.com/azybler/gpsart/pkg/evaluate"
	"github.com/azybler/gpsart/pkg/figure"
	"github.com/azybler/gpsart/pkg/geo"
	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/places"
	"github.com/azybler/gpsart/pkg/spatial"
)

// Sentinel errors for the fatal request classes.
var (
	ErrInvalidCoordinate = errors.New("gpsart: invalid coordinate")
	ErrEmptyFigure       = errors.New("gpsart: figure has fewer than 2 points")
	ErrNetworkFetch      = errors.New("gpsart: failed to fetch road network")
	ErrNoViableRoute     = errors.New("gpsart: no viable route found")
)

// defaultRotationAngles mirrors the Python reference's default sweep: -180
// to 170 in steps of 10 degrees.
func defaultRotationAngles() []float64 {
	angles := make([]float64, 0, 36)
	for a := -180; a < 180; a += 10 {
		angles = append(angles, float64(a))
	}
	return angles
}

// FetchGraphFunc loads the routable graph around a start point; radiusM is
// in meters. Supplied by the caller so pkg/gpsart stays independent of any
// one OSM source.
type FetchGraphFunc func(ctx context.Context, startLat, startLon, radiusM float64) (*graph.Graph, error)

// Request describes a single GPS-art generation request.
type Request struct {
	StartLat, StartLon float64
	SVGPath            string
	TargetDistanceKM   float64
	EnableRotation     bool
	RotationAngles     []float64 // nil uses defaultRotationAngles when EnableRotation is true
	ReturnNodePaths    bool

	FetchGraph FetchGraphFunc

	ElevationLookup elevation.Lookup // optional
	Places          []places.Place  // optional
	PlacesRadiusM   float64         // 0 uses places' own default

	OnProgress evaluate.ProgressFunc // optional

	Logger *zap.Logger // defaults to zap.NewNop()
}

func (r Request) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Response mirrors the Python reference's output shape field-for-field.
type Response struct {
	Routes           []evaluate.Candidate
	ScaledDrawing    []orb.Point
	BestAngle        float64
	Validation       Validation
	ElevationByRoute map[int]elevation.Metrics // optional, keyed by Candidate.ID
	PlacesByRoute    map[int]map[string][]string
}

// fetchRadiusMultiplier converts a target distance to a network fetch
// radius: 1.5x the target distance, in meters.
const fetchRadiusMultiplier = 1500.0

// GenerateRoutes runs the full pipeline: parse and project the figure
// (rejecting one with fewer than 2 points before any fetch), fetch the
// graph, validate the requested distance, search placements and rotations,
// and rank the results.
func GenerateRoutes(ctx context.Context, req Request) (*Response, error) {
	log := req.logger()

	if req.StartLat < -90 || req.StartLat > 90 || req.StartLon < -180 || req.StartLon > 180 {
		return nil, ErrInvalidCoordinate
	}
	if req.FetchGraph == nil {
		return nil, fmt.Errorf("gpsart: Request.FetchGraph is required: %w", ErrNetworkFetch)
	}

	canvasPoints := figure.Parse(req.SVGPath)
	drawing := figure.CanvasToGeo(canvasPoints, req.StartLat, req.StartLon, 350.0)
	if len(drawing) < 2 {
		return nil, ErrEmptyFigure
	}

	radiusM := req.TargetDistanceKM * fetchRadiusMultiplier
	g, err := req.FetchGraph(ctx, req.StartLat, req.StartLon, radiusM)
	if err != nil {
		return nil, fmt.Errorf("gpsart: fetching road network: %w", ErrNetworkFetch)
	}
	report(req.OnProgress, 10, "processing")

	minDistM := geo.PathLength(drawing)
	validation := ValidateTargetDistance(minDistM, req.TargetDistanceKM*1000)
	report(req.OnProgress, 12, "processing")

	angles := []float64{0.0}
	if req.EnableRotation {
		if len(req.RotationAngles) > 0 {
			angles = req.RotationAngles
		} else {
			angles = defaultRotationAngles()
		}
	}

	idx := spatial.Build(g, 0.0005)
	start := orb.Point{req.StartLon, req.StartLat}

	result, err := evaluate.Evaluate(ctx, evaluate.EvalParams{
		Graph:             g,
		Index:             idx,
		Start:             start,
		Drawing:           drawing,
		EffectiveTargetKM: req.TargetDistanceKM,
		Angles:            angles,
		OnProgress:        req.OnProgress,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Routes) == 0 {
		log.Warn("no candidates survived search", zap.Float64("target_km", req.TargetDistanceKM))
		return &Response{ScaledDrawing: drawing, Validation: validation}, ErrNoViableRoute
	}

	resp := &Response{
		Routes:        result.Routes,
		ScaledDrawing: result.ScaledDrawing,
		BestAngle:     result.BestAngle,
		Validation:    validation,
	}

	if req.ElevationLookup != nil {
		resp.ElevationByRoute = make(map[int]elevation.Metrics, len(result.Routes))
		for _, c := range result.Routes {
			resp.ElevationByRoute[c.ID] = elevation.ComputeRouteMetrics(c.Route, req.ElevationLookup)
		}
	}
	if len(req.Places) > 0 {
		resp.PlacesByRoute = make(map[int]map[string][]string, len(result.Routes))
		for _, c := range result.Routes {
			resp.PlacesByRoute[c.ID] = places.NearbyCategories(c.Route, req.Places, req.PlacesRadiusM)
		}
	}

	return resp, nil
}

func report(fn evaluate.ProgressFunc, percent int, stage string) {
	if fn != nil {
		fn(percent, stage)
	}
}
