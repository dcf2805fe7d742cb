package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/stats"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server is an in-memory sheet backend.
type Server struct {
	log    *zap.Logger
	router *chi.Mux

	topics  []sheet.Topic
	byID    map[string]int // topic id -> index
	problem map[string]struct{}

	mu       sync.Mutex
	progress map[string]sheet.ProgressRecord // by problem id
	failNext int
}

// NewServer builds a server from seed. log may be nil.
func NewServer(seed Seed, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:      log,
		topics:   seed.Topics,
		byID:     make(map[string]int, len(seed.Topics)),
		problem:  make(map[string]struct{}),
		progress: make(map[string]sheet.ProgressRecord, len(seed.Progress)),
	}
	for i, topic := range seed.Topics {
		s.byID[topic.ID] = i
		for _, p := range topic.Problems {
			s.problem[p.ID] = struct{}{}
		}
	}
	for _, rec := range seed.Progress {
		s.upsert(rec.ProblemID, rec.Completed)
	}
	s.setupRouter()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// FailNext makes the next n progress writes fail with 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = max(n, 0)
}

// Progress returns the stored records ordered by problem id.
func (s *Server) Progress() []sheet.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("fixture listening", zap.String("addr", addr), zap.Int("topics", len(s.topics)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupRouter configures all routes and middleware.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Browser front-ends pointed at the fixture during development.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/topics", func(r chi.Router) {
			r.Get("/", s.handleListTopics)
			r.Get("/{id}", s.handleGetTopic)
		})
		r.Route("/progress", func(r chi.Router) {
			r.Get("/", s.handleListProgress)
			r.Post("/", s.handleUpdateProgress)
			r.Get("/stats", s.handleStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})

	s.router = r
}

// loggingMiddleware logs each request with zap.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, sheet.ErrorResponse{Error: code, Message: message})
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.topics
	if topics == nil {
		topics = []sheet.Topic{}
	}
	writeJSON(w, http.StatusOK, sheet.TopicListResponse{Topics: topics})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	idx, ok := s.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, "topic_not_found", "topic "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, s.topics[idx])
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	records := s.progressLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sheet.ProgressListResponse{Progress: records})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	done := make(map[string]bool, len(s.progress))
	for id, rec := range s.progress {
		done[id] = rec.Completed
	}
	s.mu.Unlock()

	global := stats.GlobalStats(s.topics, func(problemID string) bool { return done[problemID] })
	writeJSON(w, http.StatusOK, sheet.Stats{
		Total:      global.Total,
		Completed:  global.Completed,
		Remaining:  global.Remaining(),
		Percentage: global.Percentage,
	})
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req sheet.ProgressUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProblemID = strings.TrimSpace(req.ProblemID)
	if req.ProblemID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "problemId is required")
		return
	}
	if _, ok := s.problem[req.ProblemID]; !ok {
		writeError(w, http.StatusNotFound, "problem_not_found", "problem "+req.ProblemID+" not found")
		return
	}

	s.mu.Lock()
	if s.failNext > 0 {
		s.failNext--
		s.mu.Unlock()
		s.log.Warn("injected progress failure", zap.String("problem_id", req.ProblemID))
		writeError(w, http.StatusInternalServerError, "injected_failure", "progress update failed")
		return
	}
	rec := s.upsert(req.ProblemID, req.Completed)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, rec)
}

// upsert sets the completed flag, minting a record id on first write. Callers
// other than the constructor must hold s.mu.
func (s *Server) upsert(problemID string, completed bool) sheet.ProgressRecord {
	rec, ok := s.progress[problemID]
	if !ok {
		rec = sheet.ProgressRecord{ID: uuid.NewString(), ProblemID: problemID}
	}
	rec.Completed = completed
	s.progress[problemID] = rec
	return rec
}

func (s *Server) progressLocked() []sheet.ProgressRecord {
	records := make([]sheet.ProgressRecord, 0, len(s.progress))
	for _, rec := range s.progress {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ProblemID < records[j].ProblemID })
	return records
}
