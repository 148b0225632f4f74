package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/azybler/gpsart/pkg/api"
	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/osm"
)

func main() {
	osmPath := flag.String("osm", "region.osm.pbf", "Path to an OSM PBF extract covering the service area")
	networkType := flag.String("network-type", "walk", "Network type to route over: walk, bike, drive, or all")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	start := time.Now()

	f, err := os.Open(*osmPath)
	if err != nil {
		logger.Fatal("opening OSM extract", zap.String("path", *osmPath), zap.Error(err))
	}
	defer f.Close()

	logger.Info("parsing OSM extract", zap.String("path", *osmPath), zap.String("network_type", *networkType))
	result, err := osm.Parse(context.Background(), f, osm.ParseOptions{
		NetworkType: osm.NetworkType(*networkType),
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("parsing OSM extract", zap.Error(err))
	}

	g := graph.Normalize(result)
	g = graph.CompressChains(g)
	logger.Info("graph ready",
		zap.Int("nodes", g.NumNodes()),
		zap.Duration("load_time", time.Since(start).Round(time.Millisecond)))

	// Reclaim memory from parsing temporaries (the raw edge list and the two
	// OSM node-id maps are no longer reachable once Normalize returns).
	runtime.GC()
	debug.FreeOSMemory()

	// The service area is fixed to a single preprocessed extract, so every
	// request is served from the same graph regardless of the requested
	// fetch radius.
	fetchGraph := func(ctx context.Context, startLat, startLon, radiusM float64) (*graph.Graph, error) {
		return g, nil
	}

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(fetchGraph)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
