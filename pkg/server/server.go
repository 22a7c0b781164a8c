// Package server exposes the pipeline over HTTP for external GPU
// renderers: movie metadata, static layouts, interpolated frame
// bundles, and alignment windows, plus a small movie store API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/movie"
	"github.com/phylomovie/phylomovie/pkg/movie/store"
	"github.com/phylomovie/phylomovie/pkg/msa"
	"github.com/phylomovie/phylomovie/pkg/pipeline"
	"github.com/phylomovie/phylomovie/pkg/player"
)

// Server serves one loaded movie and, optionally, a movie store.
type Server struct {
	runner   *pipeline.Runner
	resolver *player.Resolver
	mapper   *msa.Mapper
	movies   store.Store
	logger   *log.Logger
	router   chi.Router
}

// New assembles the HTTP server around a pipeline runner. The movie
// store is optional; without it the store endpoints answer 404.
func New(runner *pipeline.Runner, movies store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	data := runner.Movie()
	s := &Server{
		runner:   runner,
		resolver: player.NewResolver(data.FullTreeIndices(), data.TreeCount()),
		mapper:   msa.NewMapper(data.WindowSize, data.WindowStepSize, data.AlignmentLength(), logger),
		movies:   movies,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/movie", s.handleMovieInfo)
		r.Get("/frame", s.handleFrame)
		r.Get("/static/{index}", s.handleStatic)
		r.Get("/msa-window/{index}", s.handleMSAWindow)

		if movies != nil {
			r.Get("/movies", s.handleListMovies)
			r.Post("/movies", s.handleStoreMovie)
		}
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// requestID stamps every request with a UUID, echoed in the response.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// movieInfo is the response of GET /api/movie.
type movieInfo struct {
	Name            string `json:"name"`
	Hash            string `json:"hash"`
	TreeCount       int    `json:"tree_count"`
	FullTreeIndices []int  `json:"full_tree_indices"`
	WindowSize      int    `json:"window_size"`
	WindowStepSize  int    `json:"window_step_size"`
	AlignmentLength int    `json:"alignment_length,omitempty"`

	Distances movie.Distances `json:"distances"`
}

func (s *Server) handleMovieInfo(w http.ResponseWriter, r *http.Request) {
	data := s.runner.Movie()
	s.writeJSON(w, http.StatusOK, movieInfo{
		Name:            data.Name(),
		Hash:            s.runner.MovieHash(),
		TreeCount:       data.TreeCount(),
		FullTreeIndices: data.FullTreeIndices(),
		WindowSize:      s.mapper.WindowSize,
		WindowStepSize:  s.mapper.StepSize,
		AlignmentLength: data.AlignmentLength(),
		Distances:       data.Distances,
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("progress")
	progress, err := strconv.ParseFloat(raw, 64)
	if err != nil || progress < 0 || progress > 1 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidProgress, "progress must be a number in [0,1], got %q", raw))
		return
	}

	bundle, err := s.runner.FrameBundle(r.Context(), progress)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "tree index must be an integer"))
		return
	}

	ld, err := s.runner.LayerData(r.Context(), index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ld)
}

// msaWindowResponse is the response of GET /api/msa-window/{index}.
type msaWindowResponse struct {
	TreeIndex         int        `json:"tree_index"`
	FullTreeDataIndex int        `json:"full_tree_data_index"`
	Window            msa.Window `json:"window"`
}

func (s *Server) handleMSAWindow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= s.runner.TreeCount() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"tree index must be an integer in [0, %d)", s.runner.TreeCount()))
		return
	}
	firstFull := r.URL.Query().Get("firstFull") != "false"

	pos := s.resolver.Resolve(index, firstFull)
	s.writeJSON(w, http.StatusOK, msaWindowResponse{
		TreeIndex:         index,
		FullTreeDataIndex: pos.PairIndex,
		Window:            s.mapper.WindowFor(pos.PairIndex),
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	infos, err := s.movies.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleStoreMovie(w http.ResponseWriter, r *http.Request) {
	data, err := movie.Decode(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.movies.Put(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeMovieNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMovie, errors.ErrCodeInvalidTree,
		errors.ErrCodeInvalidTransform, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidProgress,
		errors.ErrCodeMissingField:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}
