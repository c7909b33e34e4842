package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unklstewy/adsb-tracker/internal/auth"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

const maxHistoryMinutes = 24 * 60

type aircraftResponse struct {
	Now      time.Time       `json:"now"`
	Count    int             `json:"count"`
	Stale    bool            `json:"stale"`
	Aircraft []adsb.Aircraft `json:"aircraft"`
}

type statusResponse struct {
	IsLoading       bool              `json:"is_loading"`
	LastError       string            `json:"last_error,omitempty"`
	CategoryErrors  map[string]string `json:"category_errors,omitempty"`
	LastUpdate      *time.Time        `json:"last_update,omitempty"`
	Stale           bool              `json:"stale"`
	IntervalSeconds float64           `json:"interval_seconds"`
	Zoom            float64           `json:"zoom"`
	Viewport        *tracker.Viewport `json:"viewport,omitempty"`
	Enabled         adsb.CategorySet  `json:"enabled"`
	Paused          bool              `json:"paused"`
	Cached          int               `json:"cached"`
	Generation      uint64            `json:"generation"`
}

type viewportRequest struct {
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	RadiusNM float64  `json:"radius_nm"`
	Zoom     float64  `json:"zoom"`
}

type categoriesRequest struct {
	Categories adsb.CategorySet `json:"categories"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin exchanges operator credentials for a token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.Auth == nil {
		respondError(w, http.StatusNotFound, "Authentication is disabled")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, expires, err := s.opts.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.logger.Info().Str("username", req.Username).Msg("Operator logged in")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expires.UTC(),
	})
}

// handleGetAircraft returns the current snapshot, optionally filtered by
// source category, military flag or emergency flag.
func (s *Server) handleGetAircraft(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var sources adsb.CategorySet
	if v := q.Get("category"); v != "" {
		set, err := adsb.ParseCategorySet(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		sources = set
	}
	militaryOnly := q.Get("military") == "true"
	emergencyOnly := q.Get("emergency") == "true"

	snapshot := s.opts.Tracker.CurrentSnapshot()
	list := make([]adsb.Aircraft, 0, len(snapshot))
	for _, ac := range snapshot {
		if !sources.Empty() && !sources.Has(ac.Source) {
			continue
		}
		if militaryOnly && !ac.IsMilitary {
			continue
		}
		if emergencyOnly && !ac.IsEmergency {
			continue
		}
		list = append(list, ac)
	}

	now := s.now()
	respondJSON(w, http.StatusOK, aircraftResponse{
		Now:      now.UTC(),
		Count:    len(list),
		Stale:    s.opts.Tracker.Status().Stale(now, s.opts.StaleThreshold),
		Aircraft: list,
	})
}

func (s *Server) handleGetAircraftByHex(w http.ResponseWriter, r *http.Request) {
	hex := strings.ToLower(chi.URLParam(r, "hex"))

	ac, ok := s.opts.Tracker.Aircraft(hex)
	if !ok {
		respondError(w, http.StatusNotFound, "Aircraft not found")
		return
	}

	respondJSON(w, http.StatusOK, ac)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		respondError(w, http.StatusNotFound, "History recording is disabled")
		return
	}

	minutes := 30
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryMinutes {
			respondError(w, http.StatusBadRequest, "minutes must be between 1 and 1440")
			return
		}
		minutes = n
	}

	hex := strings.ToLower(chi.URLParam(r, "hex"))
	since := s.now().Add(-time.Duration(minutes) * time.Minute)

	positions, err := s.opts.History.GetPositionHistory(r.Context(), hex, since)
	if err != nil {
		s.logger.Error().Err(err).Str("hex", hex).Msg("Failed to load position history")
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hex":       hex,
		"count":     len(positions),
		"positions": positions,
	})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.opts.Tracker.Status()
	now := s.now()

	resp := statusResponse{
		IsLoading:       st.IsLoading,
		Stale:           st.Stale(now, s.opts.StaleThreshold),
		IntervalSeconds: st.CurrentInterval.Seconds(),
		Zoom:            st.CurrentZoom,
		Enabled:         st.Enabled,
		Paused:          st.Paused,
		Cached:          st.Cached,
		Generation:      st.Generation,
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	if len(st.CategoryErrors) > 0 {
		resp.CategoryErrors = make(map[string]string, len(st.CategoryErrors))
		for c, err := range st.CategoryErrors {
			resp.CategoryErrors[c.String()] = err.Error()
		}
	}
	if !st.LastUpdate.IsZero() {
		t := st.LastUpdate.UTC()
		resp.LastUpdate = &t
	}
	if st.HasViewport {
		vp := st.Viewport
		resp.Viewport = &vp
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGetAirports lists every airport, or those near lat/lon when given.
func (s *Server) handleGetAirports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("lat") == "" && q.Get("lon") == "" {
		list := s.opts.Airports.All()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(list),
			"airports": list,
		})
		return
	}

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respondError(w, http.StatusBadRequest, "lat and lon must both be numbers")
		return
	}
	center := coordinates.Geographic{Latitude: lat, Longitude: lon}
	if err := center.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	radius := s.opts.DefaultRadiusNM
	if v := q.Get("radius"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			respondError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		radius = f
	}

	near := s.opts.Airports.Nearby(center, radius)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(near),
		"airports": near,
	})
}

// handleGetAirport looks an airport up by ICAO, falling back to IATA.
func (s *Server) handleGetAirport(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if a, ok := s.opts.Airports.ByICAO(code); ok {
		respondJSON(w, http.StatusOK, a)
		return
	}
	if a, ok := s.opts.Airports.ByIATA(code); ok {
		respondJSON(w, http.StatusOK, a)
		return
	}

	respondError(w, http.StatusNotFound, "Airport not found")
}

func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		respondError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	if req.RadiusNM == 0 {
		req.RadiusNM = s.opts.DefaultRadiusNM
	}

	center := coordinates.Geographic{Latitude: *req.Lat, Longitude: *req.Lon}
	if err := s.opts.Tracker.SetViewport(center, req.RadiusNM, req.Zoom); err != nil {
		s.respondTrackerError(w, err)
		return
	}

	s.logger.Info().
		Str("username", username(r)).
		Str("center", center.String()).
		Float64("radius_nm", req.RadiusNM).
		Float64("zoom", req.Zoom).
		Msg("Viewport changed")

	s.handleGetStatus(w, r)
}

func (s *Server) handleSetCategories(w http.ResponseWriter, r *http.Request) {
	var req categoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid categories: "+err.Error())
		return
	}

	if err := s.opts.Tracker.SetEnabledCategories(req.Categories); err != nil {
		s.respondTrackerError(w, err)
		return
	}

	s.logger.Info().
		Str("username", username(r)).
		Str("categories", req.Categories.OrDefault().String()).
		Msg("Enabled categories changed")

	s.handleGetStatus(w, r)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.opts.Tracker.Pause()
	s.handleGetStatus(w, r)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.opts.Tracker.Resume()
	s.handleGetStatus(w, r)
}

func (s *Server) respondTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidViewport):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Tracker request failed")
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func username(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims.Username
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
