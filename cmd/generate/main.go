// Command generate runs the GPS-art pipeline once against a local OSM
// extract and prints the ranked routes as JSON, without standing up a
// server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/azybler/gpsart/pkg/gpsart"
	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/osm"
)

func main() {
	osmPath := flag.String("osm", "region.osm.pbf", "Path to an OSM PBF extract covering the drawing area")
	networkType := flag.String("network-type", "walk", "Network type to route over: walk, bike, drive, or all")
	startLat := flag.Float64("lat", 0, "Start latitude")
	startLon := flag.Float64("lon", 0, "Start longitude")
	svgPath := flag.String("svg", "", "SVG path data (M/L commands) describing the figure to trace")
	targetKM := flag.Float64("target-km", 5.0, "Target route distance in kilometers")
	rotate := flag.Bool("rotate", true, "Search over rotation angles in addition to cyclic start placements")
	nodePaths := flag.Bool("node-paths", false, "Include the underlying node id sequence in the output")
	flag.Parse()

	if *svgPath == "" {
		fmt.Fprintln(os.Stderr, "generate: -svg is required")
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	f, err := os.Open(*osmPath)
	if err != nil {
		logger.Fatal("opening OSM extract", zap.String("path", *osmPath), zap.Error(err))
	}
	defer f.Close()

	result, err := osm.Parse(context.Background(), f, osm.ParseOptions{
		NetworkType: osm.NetworkType(*networkType),
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("parsing OSM extract", zap.Error(err))
	}

	g := graph.CompressChains(graph.Normalize(result))
	logger.Info("graph ready", zap.Int("nodes", g.NumNodes()))

	fetchGraph := func(ctx context.Context, lat, lon, radiusM float64) (*graph.Graph, error) {
		return g, nil
	}

	resp, err := gpsart.GenerateRoutes(context.Background(), gpsart.Request{
		StartLat:         *startLat,
		StartLon:         *startLon,
		SVGPath:          *svgPath,
		TargetDistanceKM: *targetKM,
		EnableRotation:   *rotate,
		ReturnNodePaths:  *nodePaths,
		FetchGraph:       fetchGraph,
		Logger:           logger,
		OnProgress: func(percent int, stage string) {
			logger.Info("progress", zap.Int("percent", percent), zap.String("stage", stage))
		},
	})
	if err != nil && resp == nil {
		logger.Fatal("generating routes", zap.Error(err))
	}
	if err != nil {
		logger.Warn("generating routes", zap.Error(err))
	}

	out := struct {
		Routes        []routeOut  `json:"routes"`
		ScaledDrawing []point     `json:"scaled_drawing"`
		BestAngle     float64     `json:"best_angle"`
		Validation    interface{} `json:"validation"`
	}{
		ScaledDrawing: toPoints(resp.ScaledDrawing),
		BestAngle:     resp.BestAngle,
		Validation:    resp.Validation,
	}
	for _, c := range resp.Routes {
		out.Routes = append(out.Routes, routeOut{
			ID:              c.ID,
			Angle:           c.Angle,
			DistanceM:       c.DistanceM,
			SimilarityScore: c.SimilarityScore,
			Route:           toPoints(c.Route),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("encoding output", zap.Error(err))
	}
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routeOut struct {
	ID              int     `json:"id"`
	Angle           float64 `json:"angle"`
	DistanceM       float64 `json:"distance_m"`
	SimilarityScore float64 `json:"similarity_score"`
	Route           []point `json:"route"`
}

func toPoints(pts []orb.Point) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{Lat: p.Y(), Lon: p.X()}
	}
	return out
}
