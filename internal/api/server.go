// Package api exposes the replay engine to the rendering frontend as
// a small JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"gtfs-replay/internal/replay"
)

type Server struct {
	engine *replay.Engine
	loc    *time.Location
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(engine *replay.Engine, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{engine: engine, loc: loc}
}

// Router builds the chi router with CORS open for the map frontend.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/vehicles", s.handleVehicles)
	r.Get("/api/service-range", s.handleServiceRange)
	r.Get("/api/stops/{stopID}/next-arrival", s.handleNextArrival)
	r.Get("/api/shapes/{shapeID}", s.handleShape)
	r.Get("/api/routes/{route}/delays/monthly", s.handleMonthlyDelays)
	r.Get("/api/routes/{route}/delays/monthly-by-weekday", s.handleMonthlyDelaysByWeekday)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// handleVehicles serves GET /api/vehicles?date=YYYY-MM-DD&time=SECONDS
// with the full interpolated snapshot for that instant.
func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}
	sec, ok := intParam(w, r, "time")
	if !ok {
		return
	}
	positions := s.engine.Tick(date, sec)
	if positions == nil {
		positions = []replay.VehiclePosition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles": positions,
		"count":    len(positions),
	})
}

func (s *Server) handleServiceRange(w http.ResponseWriter, r *http.Request) {
	rng := s.engine.ServiceDateRange()
	if rng == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no calendar loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"min": rng.Min.Format("2006-01-02"),
		"max": rng.Max.Format("2006-01-02"),
	})
}

// handleNextArrival serves
// GET /api/stops/{stopID}/next-arrival?after=SECONDS&date=YYYY-MM-DD.
func (s *Server) handleNextArrival(w http.ResponseWriter, r *http.Request) {
	stopID := chi.URLParam(r, "stopID")
	date, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}
	after, ok := intParam(w, r, "after")
	if !ok {
		return
	}
	arrival := s.engine.NextArrival(stopID, after, date)
	if arrival == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no upcoming arrival"})
		return
	}
	writeJSON(w, http.StatusOK, arrival)
}

func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	shapeID := chi.URLParam(r, "shapeID")
	pts := s.engine.ShapePoints(shapeID)
	if pts == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "shape not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shapeId": shapeID,
		"points":  pts,
	})
}

func (s *Server) handleMonthlyDelays(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	writeJSON(w, http.StatusOK, map[string]any{
		"route":  route,
		"months": s.engine.MonthlyDelayCounts(route),
	})
}

func (s *Server) handleMonthlyDelaysByWeekday(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	writeJSON(w, http.StatusOK, map[string]any{
		"route":  route,
		"months": s.engine.MonthlyDelayCountsByWeekday(route),
	})
}

func (s *Server) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " parameter"})
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", v, s.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + ": " + v})
		return time.Time{}, false
	}
	return d, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " parameter"})
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + ": " + v})
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
