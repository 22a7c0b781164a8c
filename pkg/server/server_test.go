package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/phylomovie/phylomovie/pkg/movie"
	"github.com/phylomovie/phylomovie/pkg/movie/store"
	"github.com/phylomovie/phylomovie/pkg/pipeline"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

func testMovie(t *testing.T) *movie.Data {
	t.Helper()

	trees := make([]*tree.Node, 5)
	meta := make([]movie.TreeMetadata, 5)
	for i := range trees {
		trees[i] = &tree.Node{Children: []*tree.Node{
			{Name: "A", Length: 1},
			{Name: "B", Length: float64(i) + 1},
		}}
	}
	meta[0].IsFullTree = true
	meta[3] = movie.TreeMetadata{SourceTreeGlobalIndex: 1, IsFullTree: true}
	meta[4] = movie.TreeMetadata{SourceTreeGlobalIndex: 2, IsFullTree: true}

	d := &movie.Data{
		FileName:                "serpents.json",
		InterpolatedTrees:       trees,
		TreeMetadata:            meta,
		PairInterpolationRanges: [][2]int{{0, 3}, {3, 5}},
		Distances:               movie.Distances{RobinsonFoulds: []float64{1, 0.5}},
		WindowSize:              100,
		WindowStepSize:          50,
		MSA:                     &movie.MSA{AlignmentLength: 300},
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return d
}

func newTestServer(t *testing.T, movies store.Store) *Server {
	t.Helper()
	runner, err := pipeline.NewRunner(testMovie(t), nil, nil, log.New(io.Discard), pipeline.Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return New(runner, movies, log.New(io.Discard))
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestMovieInfoEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/movie", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var info movieInfo
	decodeBody(t, rec, &info)
	if info.Name != "serpents" {
		t.Errorf("name = %q, want serpents", info.Name)
	}
	if info.TreeCount != 5 {
		t.Errorf("tree count = %d, want 5", info.TreeCount)
	}
	if want := []int{0, 3, 4}; len(info.FullTreeIndices) != 3 ||
		info.FullTreeIndices[0] != want[0] || info.FullTreeIndices[1] != want[1] || info.FullTreeIndices[2] != want[2] {
		t.Errorf("full tree indices = %v, want %v", info.FullTreeIndices, want)
	}
	if info.WindowSize != 100 || info.WindowStepSize != 50 || info.AlignmentLength != 300 {
		t.Errorf("window params = %d/%d/%d", info.WindowSize, info.WindowStepSize, info.AlignmentLength)
	}
	if info.Hash == "" {
		t.Error("missing movie hash")
	}
}

func TestFrameEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/frame?progress=0.1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var result pipeline.FrameResult
	decodeBody(t, rec, &result)
	if result.Static || result.Frame == nil {
		t.Fatalf("frame at 0.1 = %+v, want interpolated", result)
	}
	if result.FromIndex != 0 || result.ToIndex != 1 {
		t.Errorf("frame spans trees %d→%d, want 0→1", result.FromIndex, result.ToIndex)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/frame?progress=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	decodeBody(t, rec, &result)
	if !result.Static || result.TreeIndex != 4 {
		t.Errorf("frame at 1 = %+v, want static tree 4", result)
	}
}

func TestFrameEndpointRejectsBadProgress(t *testing.T) {
	s := newTestServer(t, nil)

	for _, raw := range []string{"", "nope", "-0.1", "1.5"} {
		rec := doRequest(t, s, http.MethodGet, "/api/frame?progress="+raw, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("progress %q: status = %d, want 400", raw, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["code"] != "INVALID_PROGRESS" {
			t.Errorf("progress %q: code = %q", raw, body["code"])
		}
	}
}

func TestStaticEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/static/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var ld struct {
		Nodes []json.RawMessage `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	decodeBody(t, rec, &ld)
	if len(ld.Nodes) != 3 || len(ld.Links) != 2 {
		t.Errorf("layer data shape: %d nodes, %d links", len(ld.Nodes), len(ld.Links))
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/static/99", nil); rec.Code != http.StatusNotFound {
		t.Errorf("out-of-range index: status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/static/xyz", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric index: status = %d, want 400", rec.Code)
	}
}

func TestMSAWindowEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		target    string
		pairIndex int
		start     int
		mid       int
		end       int
	}{
		{"/api/msa-window/1", 0, 1, 50, 100},
		{"/api/msa-window/3", 1, 51, 100, 150},
		{"/api/msa-window/3?firstFull=false", 0, 1, 50, 100},
		{"/api/msa-window/4", 1, 51, 100, 150},
	}
	for _, tt := range tests {
		rec := doRequest(t, s, http.MethodGet, tt.target, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body %s", tt.target, rec.Code, rec.Body)
			continue
		}
		var resp msaWindowResponse
		decodeBody(t, rec, &resp)
		if resp.FullTreeDataIndex != tt.pairIndex {
			t.Errorf("%s: pair index = %d, want %d", tt.target, resp.FullTreeDataIndex, tt.pairIndex)
		}
		if resp.Window.Start != tt.start || resp.Window.Mid != tt.mid || resp.Window.End != tt.end {
			t.Errorf("%s: window = %+v, want {%d %d %d}", tt.target, resp.Window, tt.start, tt.mid, tt.end)
		}
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/msa-window/99", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range index: status = %d, want 400", rec.Code)
	}
}

func TestMovieStoreEndpoints(t *testing.T) {
	movies, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s := newTestServer(t, movies)

	raw, err := json.Marshal(testMovie(t))
	if err != nil {
		t.Fatalf("marshal movie: %v", err)
	}
	rec := doRequest(t, s, http.MethodPost, "/api/movies", bytes.NewReader(raw))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var created map[string]string
	decodeBody(t, rec, &created)
	if created["id"] == "" {
		t.Fatal("missing id in response")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/movies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var infos []store.Info
	decodeBody(t, rec, &infos)
	if len(infos) != 1 || infos[0].ID != created["id"] {
		t.Errorf("list = %+v, want the stored movie", infos)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/movies", strings.NewReader(`{"interpolated_trees": []}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid movie: status = %d, want 400", rec.Code)
	}
}

func TestStoreEndpointsAbsentWithoutStore(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := doRequest(t, s, http.MethodGet, "/api/movies", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a store", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/movie", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/movie", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q, want echo of the caller's", got)
	}
}
