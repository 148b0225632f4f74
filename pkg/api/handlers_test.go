package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/graph"
)

func TestHandleRoutes_Success(t *testing.T) {
	h := NewHandlers(func(ctx context.Context, lat, lon, radiusM float64) (*graph.Graph, error) {
		return buildGridGraph(lat, lon), nil
	})

	body := `{"start_lat":0,"start_lon":0,"svg_path":"M 140 175 L 210 175 L 210 245","target_distance_km":0.3}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Routes) == 0 {
		t.Error("expected at least one route")
	}
}

func TestHandleRoutes_InvalidJSON(t *testing.T) {
	h := NewHandlers(nil)

	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoutes_MissingContentType(t *testing.T) {
	h := NewHandlers(nil)

	body := `{"start_lat":0,"start_lon":0,"svg_path":"M 0 0 L 1 1","target_distance_km":0.3}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoutes_OutOfBoundsCoordinate(t *testing.T) {
	h := NewHandlers(nil)

	body := `{"start_lat":91.0,"start_lon":0,"svg_path":"M 0 0 L 1 1","target_distance_km":0.3}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoutes_InvalidTargetDistance(t *testing.T) {
	h := NewHandlers(nil)

	body := `{"start_lat":0,"start_lon":0,"svg_path":"M 0 0 L 1 1","target_distance_km":0}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoutes_NetworkFetchFailed(t *testing.T) {
	h := NewHandlers(func(ctx context.Context, lat, lon, radiusM float64) (*graph.Graph, error) {
		return nil, errors.New("boom")
	})

	body := `{"start_lat":0,"start_lon":0,"svg_path":"M 0 0 L 1 1","target_distance_km":0.3}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestHandleRoutes_EmptyFigure(t *testing.T) {
	h := NewHandlers(func(ctx context.Context, lat, lon, radiusM float64) (*graph.Graph, error) {
		return buildGridGraph(lat, lon), nil
	})

	body := `{"start_lat":0,"start_lon":0,"svg_path":"","target_distance_km":0.3}`
	req := httptest.NewRequest("POST", "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoutes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(nil)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

// buildGridGraph lays an 8x8 grid of nodes ~80m apart centered on the given
// point, each connected to its immediate neighbors.
func buildGridGraph(startLat, startLon float64) *graph.Graph {
	const step = 0.0007
	const size = 8
	g := graph.New(size * size)
	ids := make([][]graph.NodeID, size)
	for r := 0; r < size; r++ {
		ids[r] = make([]graph.NodeID, size)
		for c := 0; c < size; c++ {
			ids[r][c] = g.AddNode(orb.Point{
				startLon + (float64(c)-float64(size)/2)*step,
				startLat + (float64(r)-float64(size)/2)*step,
			})
		}
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c+1 < size {
				g.AddEdge(ids[r][c], ids[r][c+1], 80)
			}
			if r+1 < size {
				g.AddEdge(ids[r][c], ids[r+1][c], 80)
			}
		}
	}
	return g
}
