// Package api provides the HTTP API over the save slots and the planet
// generator. GET endpoints are public; PUT and DELETE on slots require a
// bearer token.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/talgya/planet-core/internal/config"
	"github.com/talgya/planet-core/internal/logging"
	"github.com/talgya/planet-core/internal/planet"
	"github.com/talgya/planet-core/internal/saves"
	"github.com/talgya/planet-core/internal/slots"
	"github.com/talgya/planet-core/internal/terrain"
)

// maxBodyBytes bounds request bodies; a 2048x2048 height field fits.
const maxBodyBytes = 64 << 20

// Server serves planet state and save slots over HTTP.
type Server struct {
	slots   *slots.Store
	terrain terrain.GenConfig
	cfg     config.APIConfig
	logger  *slog.Logger
	limiter *RateLimiter
	started time.Time

	// The slot store does no locking; writes and the reads that depend on
	// them go through slotMu.
	slotMu sync.Mutex
}

// New builds a Server. gen supplies defaults for /planet/generate.
func New(store *slots.Store, gen terrain.GenConfig, cfg config.APIConfig, logger *slog.Logger) *Server {
	return &Server{
		slots:   store,
		terrain: gen,
		cfg:     cfg,
		logger:  logging.Component(logger, "api"),
		limiter: NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		started: time.Now(),
	}
}

// Handler returns the routed API with CORS and rate limiting applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/planet/default", s.handleDefaultPlanet)
	mux.HandleFunc("POST /api/v1/planet/normalize", s.handleNormalize)
	mux.HandleFunc("GET /api/v1/planet/generate", s.handleGenerate)

	mux.HandleFunc("GET /api/v1/slots", s.handleListSlots)
	mux.HandleFunc("GET /api/v1/slots/latest", s.handleLatestSlot)
	mux.HandleFunc("GET /api/v1/slots/{slot}", s.handleLoadSlot)
	mux.HandleFunc("PUT /api/v1/slots/{slot}", s.adminOnly(s.handleSaveSlot))
	mux.HandleFunc("DELETE /api/v1/slots/{slot}", s.adminOnly(s.handleClearSlot))

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.limiter.Middleware(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.logger.Info("HTTP API starting", "addr", addr, "admin_auth", s.cfg.AdminKey != "")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminKey == "" {
			writeError(w, http.StatusForbidden, "forbidden", "admin endpoints disabled (no PLANET_ADMIN_KEY set)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.slotMu.Lock()
	summaries, err := s.slots.List()
	s.slotMu.Unlock()
	if err != nil {
		s.internalError(w, "list slots", err)
		return
	}

	counts := map[slots.Status]int{}
	for _, sum := range summaries {
		counts[sum.Status()]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":                 "planet-core",
		"uptime_seconds":       int(time.Since(s.started).Seconds()),
		"planet_state_version": planet.CurrentVersion,
		"save_format_version":  saves.FormatVersion,
		"slot_count":           saves.SlotCount,
		"slots":                counts,
	})
}

func (s *Server) handleDefaultPlanet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, planet.Default())
}

// handleNormalize migrates a posted planet state and returns the canonical
// form.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	state, err := planet.Deserialize(body)
	if err != nil {
		writePlanetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	cfg := s.terrain
	q := r.URL.Query()

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &cfg.Width},
		{"height", &cfg.Height},
		{"octaves", &cfg.Octaves},
		{"plates", &cfg.Plates},
		{"rivers", &cfg.Rivers},
		{"settlements", &cfg.Settlements},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("%s must be an integer", p.name))
				return
			}
			*p.dst = n
		}
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "seed must be an integer")
			return
		}
		cfg.Seed = seed
	}

	state, err := terrain.Generate(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	s.slotMu.Lock()
	summaries, err := s.slots.List()
	s.slotMu.Unlock()
	if err != nil {
		s.internalError(w, "list slots", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleLatestSlot(w http.ResponseWriter, r *http.Request) {
	s.slotMu.Lock()
	best, ok, err := s.slots.FindMostRecentValid()
	s.slotMu.Unlock()
	if err != nil {
		s.internalError(w, "find latest slot", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, saves.KindSlotEmpty.String(), "no slot holds a loadable save")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (s *Server) handleLoadSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	s.slotMu.Lock()
	rec, err := s.slots.Load(slot)
	s.slotMu.Unlock()
	if err != nil {
		s.writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// saveRequest is the body of PUT /slots/{slot}.
type saveRequest struct {
	Label       string          `json:"label"`
	PlanetState json.RawMessage `json:"planetState"`
}

func (s *Server) handleSaveSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req saveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return
	}
	if len(req.PlanetState) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "planetState is required")
		return
	}
	state, err := planet.Deserialize(req.PlanetState)
	if err != nil {
		writePlanetError(w, err)
		return
	}

	s.slotMu.Lock()
	rec, err := s.slots.Save(slot, state, slots.SaveOptions{Label: req.Label})
	s.slotMu.Unlock()
	if err != nil {
		s.writeSaveError(w, err)
		return
	}
	s.logger.Info("slot saved via API", "slot", slot, "label", rec.Metadata.Label)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	s.slotMu.Lock()
	err := s.slots.Clear(slot)
	s.slotMu.Unlock()
	if err != nil {
		s.writeSaveError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func slotParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, saves.KindInvalidSlot.String(), "slot must be an integer")
		return 0, false
	}
	return slot, true
}

// statusFor maps a save error kind to an HTTP status.
func statusFor(kind saves.Kind) int {
	switch kind {
	case saves.KindSlotEmpty:
		return http.StatusNotFound
	case saves.KindCorrupted, saves.KindUnsupportedVersion, saves.KindIncompatible:
		return http.StatusUnprocessableEntity
	case saves.KindInvalidSlot:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeSaveError(w http.ResponseWriter, err error) {
	kind := saves.KindOf(err)
	if kind == 0 {
		s.internalError(w, "slot operation", err)
		return
	}
	writeError(w, statusFor(kind), kind.String(), err.Error())
}

func writePlanetError(w http.ResponseWriter, err error) {
	switch planet.KindOf(err) {
	case planet.KindParse:
		writeError(w, http.StatusBadRequest, "parse", err.Error())
	case planet.KindUnsupportedVersion:
		writeError(w, http.StatusUnprocessableEntity, "unsupported_version", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
