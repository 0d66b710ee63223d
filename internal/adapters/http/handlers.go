package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"ukccu/internal/adapters/http/middleware"
	"ukccu/internal/application/orchestrators"
	"ukccu/internal/application/projections"
	"ukccu/internal/domain/ballot"
	"ukccu/internal/domain/nomination"
	"ukccu/internal/domain/panel"
)

// server binds handlers to their dependencies.
type server struct {
	deps Deps
}

func newServer(deps Deps) *server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = generateID
	}
	return &server{deps: deps}
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// routes registers every endpoint. Middleware is applied by NewMux.
func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	if s.deps.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.deps.StaticDir))))
	}

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /announcements", s.handleAnnouncements)
	mux.HandleFunc("POST /announcements/panel", s.handlePanelEvent)
	mux.HandleFunc("GET /events", s.handleEvents)

	mux.HandleFunc("GET /bible-study", s.handleBibleStudyPage)
	mux.HandleFunc("POST /bible-study", s.handleBibleStudySubmit)
	mux.HandleFunc("GET /nominations", s.handleNominationsPage)
	mux.HandleFunc("POST /nominations", s.handleNominationsSubmit)
	mux.HandleFunc("GET /vote", s.handleVotePage)
	mux.HandleFunc("POST /vote", s.handleVoteSubmit)

	admin := middleware.AdminAuth(s.deps.AdminPasswordHash)
	mux.Handle("GET /admin/submissions/{feature}", admin(http.HandlerFunc(s.handleAdminSubmissions)))
	mux.Handle("GET /admin/perf", admin(http.HandlerFunc(s.handleAdminPerf)))
	return mux
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// visitor returns the request's visitor ID.
func visitor(r *http.Request) string {
	id, _ := middleware.VisitorFromContext(r.Context())
	return id
}

// layoutData wraps every page with the announcement widget.
type layoutData struct {
	Title  string
	Active string
	Panel  projections.AnnouncementPanelView
	Page   any
}

// render executes layout.html plus the named page.
// The announcement widget is rebuilt from the current read state on every render.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, name, title, active string, page any) {
	view, err := s.panelView(r)
	if err != nil {
		slog.Error("page_event", "event", "panel_unavailable", "error", err)
	}

	funcMap := template.FuncMap{
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": projections.RenderMarkdown,
		"positions":      func() []nomination.Position { return nomination.Positions },
		"ballotName":     ballot.NameField,
		"ballotYear":     ballot.YearField,
		"ballotCourse":   ballot.CourseField,
		"list":           func(items ...string) []string { return items },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, layoutData{Title: title, Active: active, Panel: view, Page: page}); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *server) panelView(r *http.Request) (projections.AnnouncementPanelView, error) {
	return projections.QueryAnnouncementPanel(r.Context(),
		projections.AnnouncementPanelInput{Visitor: visitor(r), Now: s.deps.Now()},
		projections.AnnouncementPanelDeps{Announcements: s.deps.Catalog.Announcements, ReadState: s.deps.ReadState},
	)
}

// handleHome renders the landing page with the announcement bell.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", "Home", "home", nil)
}

// handleAnnouncements returns the panel projection as JSON.
func (s *server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	view, err := s.panelView(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type panelEventRequest struct {
	State string `json:"state"`
	Event string `json:"event"`
}

// handlePanelEvent applies a bell, close, outside or in-panel click.
// Accepts a JSON body or form fields.
func (s *server) handlePanelEvent(w http.ResponseWriter, r *http.Request) {
	var req panelEventRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		req.State, req.Event = r.FormValue("state"), r.FormValue("event")
	}

	res, err := orchestrators.ExecutePanelEvent(r.Context(),
		orchestrators.PanelEventInput{Visitor: visitor(r), State: req.State, Event: req.Event},
		orchestrators.PanelEventDeps{Announcements: s.deps.Catalog.Announcements, ReadState: s.deps.ReadState, Now: s.deps.Now},
	)
	if errors.Is(err, panel.ErrUnknownState) || errors.Is(err, panel.ErrUnknownEvent) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleEvents renders the gallery, optionally narrowed by ?filter=<category>.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	view := projections.QueryGallery(
		projections.GalleryInput{Filter: r.URL.Query().Get("filter")},
		projections.GalleryDeps{Events: s.deps.Catalog.Events},
	)
	s.render(w, r, http.StatusOK, "events.html", "Events", "events", view)
}
