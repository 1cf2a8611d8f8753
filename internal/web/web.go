package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"classfree/internal/config"
	"classfree/internal/ical"
	"classfree/internal/index"
	appLog "classfree/internal/log"
	"classfree/internal/model"
	"classfree/internal/roster"
	"classfree/internal/schedule"
)

// Server answers room occupancy queries over HTTP and serves the embedded
// grid UI. It owns the current index snapshot; Reload builds a fresh index
// and swaps it in whole, so queries never observe a half-built index.
type Server struct {
	cfg     *config.Config
	fetcher *roster.Fetcher
	router  chi.Router

	mu  sync.RWMutex
	idx *index.Index

	// now is the wall clock; injectable for tests.
	now func() time.Time
}

// embeddedStatic contains the grid UI (a static page, thin client of /api).
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a Server. No data is loaded yet; call Reload before
// serving queries, or let the first cron tick do it.
func NewServer(cfg *config.Config, fetcher *roster.Fetcher) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		now:     time.Now,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the http.Handler for this server, with Basic Auth applied
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// PreviewPath is where the captured grid PNG lives.
func (s *Server) PreviewPath() string {
	return filepath.Join(s.cfg.CacheDir, "preview.png")
}

// Reload fetches the timetable CSV, parses every row and swaps the room
// index. Queries running concurrently keep the previous snapshot until the
// new one is fully built.
func (s *Server) Reload(ctx context.Context) error {
	if s.cfg.Source.URL == "" {
		return errors.New("web: no timetable source configured")
	}

	res, err := s.fetcher.Fetch(ctx, roster.Source{ID: s.cfg.Source.ID, URL: s.cfg.Source.URL})
	if err != nil {
		return err
	}
	rows, err := roster.Decode(res.Body)
	if err != nil {
		return err
	}

	idx := index.Build(rows)

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	return nil
}

// current returns the active index snapshot, or nil before the first load.
func (s *Server) current() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password is treated as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="classfree", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/preview.png", s.handlePreview)

	r.Route("/api", func(r chi.Router) {
		// The API is meant to be embeddable in campus dashboards.
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}))
		r.Use(httprate.LimitByIP(120, time.Minute))

		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)
		r.Route("/rooms/{room}", func(r chi.Router) {
			r.Get("/", s.handleRoom)
			r.Get("/now", s.handleRoomNow)
			r.Get("/schedule.ics", s.handleRoomICS)
		})
	})

	// Everything else is the embedded grid UI.
	r.NotFound(s.staticFileServer().ServeHTTP)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// occupancyDTO is a JSON-friendly view of one occupancy record.
type occupancyDTO struct {
	Day        model.Day      `json:"day"`
	Hour       model.HourSlot `json:"hour"`
	Window     string         `json:"window"`
	Code       string         `json:"code"`
	Title      string         `json:"title,omitempty"`
	Instructor string         `json:"instructor,omitempty"`
}

// roomResponse is the JSON shape for GET /api/rooms/{room}.
type roomResponse struct {
	Room    string         `json:"room"`
	Records []occupancyDTO `json:"records"`
}

// nowResponse is the JSON shape for GET /api/rooms/{room}/now.
type nowResponse struct {
	Room     string         `json:"room"`
	Teaching bool           `json:"teaching"` // false on the rest day / outside teaching hours
	Occupied bool           `json:"occupied"`
	Day      model.Day      `json:"day,omitempty"`
	Hour     model.HourSlot `json:"hour,omitempty"`
	Current  *occupancyDTO  `json:"current,omitempty"`
}

// statusResponse is the JSON shape for GET /api/status.
type statusResponse struct {
	Snapshot string    `json:"snapshot"`
	BuiltAt  time.Time `json:"built_at"`
	Rows     int       `json:"rows"`
	Skipped  int       `json:"skipped"`
	Rooms    int       `json:"rooms"`
	SourceID string    `json:"source_id"`
}

func toDTO(rec model.Occupancy) occupancyDTO {
	return occupancyDTO{
		Day:        rec.Day,
		Hour:       rec.Hour,
		Window:     rec.Hour.Window(),
		Code:       rec.Code,
		Title:      rec.Title,
		Instructor: rec.Instructor,
	}
}

// lookupRoom resolves the {room} URL parameter against the current index,
// writing the error response itself when the lookup cannot proceed.
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) ([]model.Occupancy, string, bool) {
	idx := s.current()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "no timetable loaded yet")
		return nil, "", false
	}

	room := chi.URLParam(r, "room")
	records, err := idx.Lookup(room)
	switch {
	case errors.Is(err, index.ErrNoQuery):
		writeError(w, http.StatusBadRequest, "empty room name")
		return nil, "", false
	case errors.Is(err, index.ErrNotFound):
		writeError(w, http.StatusNotFound, "no schedule found for room")
		return nil, "", false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return nil, "", false
	}
	return records, index.NormalizeRoom(room), true
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	records, key, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	dtos := make([]occupancyDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toDTO(rec))
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: key, Records: dtos})
}

func (s *Server) handleRoomNow(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "no timetable loaded yet")
		return
	}

	room := chi.URLParam(r, "room")
	day, hour, teaching := schedule.Current(s.now().In(s.cfg.Location()))

	resp := nowResponse{Room: index.NormalizeRoom(room), Teaching: teaching}
	if !teaching {
		// Still validate the room so unknown rooms 404 at any hour.
		if _, err := idx.Lookup(room); err != nil {
			s.writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	rec, occupied, err := idx.OccupiedAt(room, day, hour)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	resp.Day = day
	resp.Hour = hour
	resp.Occupied = occupied
	if occupied {
		dto := toDTO(rec)
		resp.Current = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, index.ErrNoQuery):
		writeError(w, http.StatusBadRequest, "empty room name")
	case errors.Is(err, index.ErrNotFound):
		writeError(w, http.StatusNotFound, "no schedule found for room")
	default:
		writeError(w, http.StatusInternalServerError, "lookup failed")
	}
}

func (s *Server) handleRoomICS(w http.ResponseWriter, r *http.Request) {
	records, key, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	out, err := ical.RoomCalendar(key, records, s.cfg.Location(), s.now())
	if err != nil {
		appLog.Error("ics export failed", err, "room", key)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	idx := s.current()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "no timetable loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Snapshot: idx.SnapshotID.String(),
		BuiltAt:  idx.BuiltAt,
		Rows:     idx.Rows,
		Skipped:  idx.Skipped,
		Rooms:    idx.RoomCount(),
		SourceID: s.cfg.Source.ID,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusBadGateway, "refresh failed")
		return
	}
	s.handleStatus(w, r)
}

// handlePreview serves the last captured grid PNG from disk. ServeFile
// returns 404 when no capture has happened yet.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.PreviewPath())
}

// staticFileServer serves the embedded grid UI. API paths never fall
// through to it; a missing API route is a JSON-ish 404, not HTML.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
