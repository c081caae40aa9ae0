// Package handlers wires the café pages to the store, validation and renderer.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mspro-labs/cafe-critic/internal/csrf"
	"mspro-labs/cafe-critic/internal/db"
	"mspro-labs/cafe-critic/internal/form"
	"mspro-labs/cafe-critic/internal/metrics"
	"mspro-labs/cafe-critic/internal/middleware"
	"mspro-labs/cafe-critic/internal/models"
	"mspro-labs/cafe-critic/internal/web"
)

// CafeStore is the subset of *db.Store the handlers need.
type CafeStore interface {
	Create(ctx context.Context, f models.CafeFields) (int64, error)
	Get(ctx context.Context, id int64) (models.Cafe, error)
	ListByRatingAscending(ctx context.Context) ([]models.Cafe, error)
	Update(ctx context.Context, id int64, f models.CafeFields) error
	Delete(ctx context.Context, id int64) error
}

// Renderer renders a named page with its data.
type Renderer interface {
	Render(w io.Writer, page string, data any) error
}

const duplicateNameMsg = "A café with this name already exists."

// Handler serves the café pages. It holds no per-request state.
type Handler struct {
	store    CafeStore
	renderer Renderer
	csrf     *csrf.Protector
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a Handler.
func New(store CafeStore, renderer Renderer, protector *csrf.Protector, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		renderer: renderer,
		csrf:     protector,
		metrics:  m,
		logger:   logger,
	}
}

// page is the data context handed to every template.
type page struct {
	Title     string
	Cafes     []models.Cafe
	Cafe      models.Cafe
	Form      form.CafeForm
	Errors    form.FieldErrors
	Action    string
	CSRFToken string
	Message   string
}

// Routes builds the router for all pages plus /metrics.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	logging, measure := middleware.Logging(h.logger), middleware.Metrics(h.metrics)
	r.Use(logging, measure)

	r.HandleFunc("/", h.List).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/view", h.View).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/add", h.Add).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/edit", h.Edit).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/delete", h.Delete).Methods(http.MethodGet)
	r.HandleFunc("/search", h.Search).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)

	// mux skips Use middleware when no route matches, so wrap the fallbacks directly.
	r.NotFoundHandler = logging(measure(http.HandlerFunc(h.notFound)))
	r.MethodNotAllowedHandler = logging(measure(http.HandlerFunc(h.methodNotAllowed)))
	return r
}

// List shows every café, lowest overall rating first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cafes, err := h.store.ListByRatingAscending(r.Context())
	if err != nil {
		h.serverError(w, "list cafes", err)
		return
	}
	h.render(w, http.StatusOK, web.PageList, page{Title: "All cafés", Cafes: cafes})
}

// View shows one café.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	cafe, ok := h.loadCafe(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, web.PageView, page{Title: cafe.Name, Cafe: cafe})
}

// Add shows an empty form and creates a café from a valid submission.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	data := page{Title: "Add a café", Action: "/add"}
	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, data)
		return
	}
	if !h.verifyCSRF(w, r) {
		return
	}

	data.Form = form.FromRequest(r)
	fields, errs := data.Form.Validate()
	if errs != nil {
		h.rejectForm(w, r, "create", data, errs)
		return
	}

	_, err := h.store.Create(r.Context(), fields)
	switch {
	case errors.Is(err, db.ErrDuplicate):
		h.metrics.RecordMutation("create", "duplicate")
		h.rejectForm(w, r, "", data, form.FieldErrors{"name": duplicateNameMsg})
	case err != nil:
		h.metrics.RecordMutation("create", "error")
		h.serverError(w, "create cafe", err)
	default:
		h.metrics.RecordMutation("create", "ok")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Edit pre-fills the form from the stored café and replaces every field
// on a valid submission.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	cafe, ok := h.loadCafe(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost && !h.verifyCSRF(w, r) {
		return
	}

	data := page{
		Title:  "Edit " + cafe.Name,
		Cafe:   cafe,
		Action: "/edit?id=" + strconv.FormatInt(cafe.ID, 10),
	}
	if r.Method != http.MethodPost {
		data.Form = form.FromCafe(cafe)
		h.renderForm(w, r, http.StatusOK, data)
		return
	}

	data.Form = form.FromRequest(r)
	fields, errs := data.Form.Validate()
	if errs != nil {
		h.rejectForm(w, r, "update", data, errs)
		return
	}

	err := h.store.Update(r.Context(), cafe.ID, fields)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// Deleted between load and update.
		h.metrics.RecordMutation("update", "not_found")
		h.notFound(w, r)
	case errors.Is(err, db.ErrDuplicate):
		h.metrics.RecordMutation("update", "duplicate")
		h.rejectForm(w, r, "", data, form.FieldErrors{"name": duplicateNameMsg})
	case err != nil:
		h.metrics.RecordMutation("update", "error")
		h.serverError(w, "update cafe", err)
	default:
		h.metrics.RecordMutation("update", "ok")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Delete removes a café and returns to the list. There is no confirmation step.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	err := h.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		h.metrics.RecordMutation("delete", "not_found")
		h.notFound(w, r)
	case err != nil:
		h.metrics.RecordMutation("delete", "error")
		h.serverError(w, "delete cafe", err)
	default:
		h.metrics.RecordMutation("delete", "ok")
		h.logger.Info("cafe deleted", zap.Int64("id", id))
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// Search is a placeholder page.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, web.PageSearch, page{Title: "Search"})
}

// loadCafe resolves the id query parameter, writing a not-found page when
// it is missing, malformed or unknown.
func (h *Handler) loadCafe(w http.ResponseWriter, r *http.Request) (models.Cafe, bool) {
	id, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return models.Cafe{}, false
	}
	cafe, err := h.store.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		h.logger.Debug("cafe not found", zap.Int64("id", id))
		h.notFound(w, r)
		return models.Cafe{}, false
	}
	if err != nil {
		h.serverError(w, "load cafe", err)
		return models.Cafe{}, false
	}
	return cafe, true
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) verifyCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	if err := h.csrf.Verify(r); err != nil {
		h.logger.Debug("csrf check failed", zap.Error(err))
		http.Error(w, "Invalid or expired form, please reload the page and try again.", http.StatusForbidden)
		return false
	}
	return true
}

// rejectForm re-renders a submission with its field errors. A non-empty op
// counts the rejection as an invalid mutation.
func (h *Handler) rejectForm(w http.ResponseWriter, r *http.Request, op string, data page, errs form.FieldErrors) {
	if op != "" {
		h.metrics.RecordMutation(op, "invalid")
	}
	h.logger.Debug("form rejected", zap.String("action", data.Action), zap.Any("errors", errs))
	data.Errors = errs
	h.renderForm(w, r, http.StatusUnprocessableEntity, data)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data page) {
	token, err := h.csrf.Issue(w, r)
	if err != nil {
		h.serverError(w, "issue csrf token", err)
		return
	}
	data.CSRFToken = token
	h.render(w, status, web.PageForm, data)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, web.PageNotFound, page{Title: "Not found"})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusMethodNotAllowed, web.PageError, page{
		Title:   "Method not allowed",
		Message: "That action isn't available here.",
	})
}

// render buffers the page so the status code is only sent once rendering succeeded.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, data); err != nil {
		h.serverError(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write response", zap.String("page", name), zap.Error(err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, action string, err error) {
	h.logger.Error("request failed", zap.String("action", action), zap.Error(err))
	http.Error(w, "Something went wrong, please try again later.", http.StatusInternalServerError)
}
