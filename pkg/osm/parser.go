package osm

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/azybler/gpsart/pkg/geo"
)

// NetworkType selects which highway tags are traversable and how
// directionality is interpreted, mirroring osmnx's network_type parameter.
type NetworkType string

const (
	NetworkWalk  NetworkType = "walk"
	NetworkBike  NetworkType = "bike"
	NetworkDrive NetworkType = "drive"
	NetworkAll   NetworkType = "all"
)

// RawEdge represents a directed edge parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     uint32 // distance in millimeters
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// driveHighways lists highway tag values accessible by car.
var driveHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true,
	"living_street": true, "service": true,
}

// walkHighways lists highway tag values traversable on foot. Pedestrian
// networks additionally admit dedicated foot infrastructure the drive table
// excludes.
var walkHighways = map[string]bool{
	"footway": true, "path": true, "pedestrian": true,
	"living_street": true, "residential": true, "steps": true,
	"crossing": true, "track": true, "service": true,
	"unclassified": true, "tertiary": true, "secondary": true,
	"primary": true,
}

// bikeHighways lists highway tag values traversable by bicycle.
var bikeHighways = map[string]bool{
	"cycleway": true, "living_street": true, "residential": true,
	"unclassified": true, "tertiary": true, "secondary": true,
	"primary": true, "path": true, "track": true, "service": true,
}

func accessTable(nt NetworkType) map[string]bool {
	switch nt {
	case NetworkWalk:
		return walkHighways
	case NetworkBike:
		return bikeHighways
	case NetworkDrive:
		return driveHighways
	default:
		return nil // NetworkAll: no highway-tag filter
	}
}

// isAccessible returns true if the way can be traversed under the given
// network type.
func isAccessible(tags osm.Tags, nt NetworkType) bool {
	hw := tags.Find("highway")
	if hw == "" {
		return false
	}
	if table := accessTable(nt); table != nil && !table[hw] {
		return false
	}

	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	switch nt {
	case NetworkDrive:
		if tags.Find("motor_vehicle") == "no" {
			return false
		}
	case NetworkBike:
		if tags.Find("bicycle") == "no" {
			return false
		}
	case NetworkWalk:
		if tags.Find("foot") == "no" {
			return false
		}
	}

	return true
}

// isCarAccessible preserves the teacher's original car-only predicate,
// expressed in terms of the generalized table.
func isCarAccessible(tags osm.Tags) bool {
	return isAccessible(tags, NetworkDrive)
}

// directionFlags returns (forward, backward) based on highway type, oneway
// tags, and network type. Pedestrian (and generic "all") networks are
// treated as bidirectional regardless of oneway, matching the Python
// reference's network_type='walk' behavior, which never consults oneway at
// all for a walking network.
func directionFlags(tags osm.Tags, nt ...NetworkType) (forward, backward bool) {
	networkType := NetworkDrive
	if len(nt) > 0 {
		networkType = nt[0]
	}
	if networkType == NetworkWalk || networkType == NetworkAll {
		return true, true
	}

	forward = true
	backward = true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		forward = false
		backward = false
	}

	return forward, backward
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox defines a geographic bounding box for filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox        BBox        // if non-zero, filter edges to this bounding box
	NetworkType NetworkType // defaults to NetworkWalk
	Logger      *zap.Logger // defaults to a no-op logger
}

func (o ParseOptions) networkType() NetworkType {
	if o.NetworkType == "" {
		return NetworkWalk
	}
	return o.NetworkType
}

func (o ParseOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Parse reads an OSM PBF file and returns directed edges for the requested
// network type. The reader is consumed twice (seeks back to start for the
// second pass), so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	nt := opt.networkType()
	log := opt.logger()
	useBBox := !opt.BBox.IsZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		w, ok := obj.(*osm.Way)
		if !ok {
			continue
		}

		if !isAccessible(w.Tags, nt) {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(w.Tags, nt)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Forward: fwd, Backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Info("pass 1 complete",
		zap.Int("ways", len(ways)),
		zap.Int("referenced_nodes", len(referencedNodes)),
		zap.String("network_type", string(nt)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		n, ok := obj.(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Info("pass 2 complete", zap.Int("node_coords", len(nodeLat)))

	var edges []RawEdge
	var skippedEdges, bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			weightMM := uint32(math.Round(dist * 1000))
			if weightMM == 0 {
				weightMM = 1
			}

			if w.Forward {
				edges = append(edges, RawEdge{FromNodeID: fromID, ToNodeID: toID, Weight: weightMM})
			}
			if w.Backward {
				edges = append(edges, RawEdge{FromNodeID: toID, ToNodeID: fromID, Weight: weightMM})
			}
		}
	}

	if skippedEdges > 0 {
		log.Warn("skipped edges due to missing node coordinates", zap.Int("count", skippedEdges))
	}
	if bboxFiltered > 0 {
		log.Info("filtered edges outside bounding box", zap.Int("count", bboxFiltered))
	}
	log.Info("built directed edges", zap.Int("count", len(edges)))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}
