package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/schema"
)

const (
	DefaultMaxBodyBytes   = 1 << 20
	DefaultIdentityHeader = "X-Wiki-User"
)

// Engine is the sync engine as seen by the HTTP adapter.
type Engine interface {
	Volumes() []volume.Info
	Status(ctx context.Context, name string) (domain.SyncReport, error)
	Fetch(ctx context.Context, name string) (domain.SyncReport, error)
	Pull(ctx context.Context, name string) (domain.PullResult, error)
	Push(ctx context.Context, name string) error
	Commit(ctx context.Context, name string, req domain.CommitRequest) (domain.CommitResult, error)
	Restore(ctx context.Context, name string, req domain.RestoreRequest) error
	AbortMerge(ctx context.Context, name string) error
	History(ctx context.Context, name string, limit int) ([]domain.JournalEntry, error)
}

type BodyValidator interface {
	Validate(ctx context.Context, doc schema.Document, body []byte) error
}

type ServerConfig struct {
	// RequestTimeout bounds how long a caller waits. Zero disables it.
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// IdentityHeader carries the pre-authorized user; it is only logged.
	IdentityHeader string
}

type Server struct {
	engine    Engine
	validator BodyValidator
	cfg       ServerConfig
	mux       *http.ServeMux
}

func NewServer(engine Engine, validator BodyValidator, cfg ServerConfig) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = DefaultIdentityHeader
	}
	s := &Server{
		engine:    engine,
		validator: validator,
		cfg:       cfg,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	s.mux.HandleFunc("GET /api/volumes", s.handleVolumes)
	s.mux.HandleFunc("GET /api/git/{volume}/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/git/{volume}/fetch", s.handleFetch)
	s.mux.HandleFunc("POST /api/git/{volume}/pull", s.handlePull)
	s.mux.HandleFunc("POST /api/git/{volume}/push", s.handlePush)
	s.mux.HandleFunc("POST /api/git/{volume}/commit", s.handleCommit)
	s.mux.HandleFunc("POST /api/git/{volume}/restore", s.handleRestore)
	s.mux.HandleFunc("POST /api/git/{volume}/merge/abort", s.handleAbortMerge)
	s.mux.HandleFunc("GET /api/git/{volume}/history", s.handleHistory)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	if s.cfg.RequestTimeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		r = r.WithContext(ctx)
	}
	s.mux.ServeHTTP(rec, r)

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(started),
	}
	if user := r.Header.Get(s.cfg.IdentityHeader); user != "" {
		attrs = append(attrs, "user", user)
	}
	if rec.status >= http.StatusInternalServerError {
		slog.Warn("http request", attrs...)
		return
	}
	slog.Info("http request", attrs...)
}

func (s *Server) handleVolumes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toVolumes(s.engine.Volumes()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Status(r.Context(), r.PathValue("volume"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSyncReport(report))
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Fetch(r.Context(), r.PathValue("volume"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSyncReport(report))
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Pull(r.Context(), r.PathValue("volume"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pullResponse{Outcome: string(result.Outcome), Head: result.Head})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Push(r.Context(), r.PathValue("volume")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var body commitRequest
	if err := s.decodeBody(w, r, schema.CommitRequest, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.engine.Commit(r.Context(), r.PathValue("volume"), domain.CommitRequest{
		Message:     body.Message,
		Files:       body.Files,
		AuthorName:  body.AuthorName,
		AuthorEmail: body.AuthorEmail,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{Commit: result.Commit})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var body restoreRequest
	if err := s.decodeBody(w, r, schema.RestoreRequest, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.Restore(r.Context(), r.PathValue("volume"), domain.RestoreRequest{Files: body.Files}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleAbortMerge(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.AbortMerge(r.Context(), r.PathValue("volume")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit %q", errBadRequest, raw))
			return
		}
		limit = parsed
	}
	entries, err := s.engine.History(r.Context(), r.PathValue("volume"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJournal(entries))
}

// decodeBody reads at most MaxBodyBytes, checks the body against its schema
// and decodes it into dst, rejecting unknown members.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, doc schema.Document, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxErr.Limit)
		}
		return fmt.Errorf("%w: read body: %w", errBadRequest, err)
	}
	if s.validator != nil {
		if err := s.validator.Validate(r.Context(), doc, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst, json.RejectUnknownMembers(true)); err != nil {
		return fmt.Errorf("%w: invalid json body: %w", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, data); err != nil {
		slog.Warn("write response", "err", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
