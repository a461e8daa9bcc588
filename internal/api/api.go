// Package api exposes the tournament service over HTTP with JSON bodies.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

// Server holds the HTTP handlers.
type Server struct {
	svc *tournament.Service
	log *logrus.Entry
}

// NewRouter registers every route on a new mux router.
func NewRouter(svc *tournament.Service, logger *logrus.Entry) *mux.Router {
	s := &Server{svc: svc, log: logger.WithField("component", "api")}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/gameplays", s.createGameplay).Methods(http.MethodPost)

	g := v1.PathPrefix("/gameplays/{gameplayId}").Subrouter()
	g.HandleFunc("/teams", s.createTeams).Methods(http.MethodPost)
	g.HandleFunc("/rounds", s.createRounds).Methods(http.MethodPost)
	g.HandleFunc("/venues", s.createVenues).Methods(http.MethodPost)
	g.HandleFunc("/venues/allocate", s.allocateVenues).Methods(http.MethodPost)
	g.HandleFunc("/rankings", s.publishRankings).Methods(http.MethodPost)
	g.HandleFunc("/head-to-head", s.headToHead).Methods(http.MethodGet)
	g.HandleFunc("/teams/{code}/rankings", s.teamRankings).Methods(http.MethodGet)
	g.HandleFunc("/matches/{matchId:[0-9]+}/simulate", s.simulateMatch).Methods(http.MethodPost)

	r := g.PathPrefix("/rounds/{code}").Subrouter()
	r.HandleFunc("/schedule", s.scheduleRound).Methods(http.MethodPost)
	r.HandleFunc("/standings", s.recomputeStandings).Methods(http.MethodPost)
	r.HandleFunc("/knockout-advancement", s.knockoutAdvancement).Methods(http.MethodPost)
	r.HandleFunc("/group-advancement", s.groupAdvancement).Methods(http.MethodPost)
	r.HandleFunc("/matches", s.matchesByRound).Methods(http.MethodGet)
	r.HandleFunc("/groups/{group}", s.groupTable).Methods(http.MethodGet)
	r.HandleFunc("/groups/{group}/odds", s.qualificationOdds).Methods(http.MethodGet)

	return router
}

// WithCORS wraps h so browsers on the given origins may call it.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, league.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrInvalidState), errors.Is(err, league.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, league.ErrInvariant):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	entry := s.log.WithFields(logrus.Fields{"path": r.URL.Path, "status": status}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}
	entry.Warn("request rejected")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads a JSON body into dst. An empty body is accepted when optional.
func decode(r *http.Request, dst interface{}, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding body: %v: %w", err, league.ErrValidation)
	}
	return nil
}

// gameplayID returns the path's gameplay id, which must be a UUID.
func gameplayID(r *http.Request) (string, error) {
	raw := mux.Vars(r)["gameplayId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("gameplay id %q: %w", raw, league.ErrValidation)
	}
	return id.String(), nil
}
