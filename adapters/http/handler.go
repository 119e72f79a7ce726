// Package http exposes the store over a JSON:API-flavored REST surface.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/relstore/relstore/adapters/auth"
	"github.com/relstore/relstore/adapters/metrics"
	"github.com/relstore/relstore/app"
	"github.com/relstore/relstore/pkg/jsonapi"
	"github.com/relstore/relstore/ports"
)

// maxBodySize caps request bodies at 1MB.
const maxBodySize = 1 << 20

// Handler wires the store and auth services into HTTP routes.
type Handler struct {
	store   *app.StoreService
	tokens  *auth.TokenService
	hasher  ports.Hasher
	handles ports.HandleIndex
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Tokens  *auth.TokenService
	Hasher  ports.Hasher
	Handles ports.HandleIndex
	Logger  zerolog.Logger
	Metrics *metrics.Collector
}

// NewHandler creates an HTTP handler around the store service.
func NewHandler(store *app.StoreService, opts Options) *Handler {
	return &Handler{
		store:   store,
		tokens:  opts.Tokens,
		hasher:  opts.Hasher,
		handles: opts.Handles,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Router builds the route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/store", func(r chi.Router) {
		r.Post("/resources", h.handleCreate)
		r.Get("/resources/{id}", h.handleGet)
		r.Patch("/resources/{id}", h.handleUpdate)
		r.Delete("/resources/{id}", h.handleDelete)
		r.Get("/resources/{id}/{rel}", h.handleRelGet)
		r.Put("/resources/{id}/{rel}", h.handleRelReplace)
		r.Post("/resources/{id}/{rel}", h.handleRelAppend)
	})

	if h.tokens != nil {
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/signup", h.handleSignup)
			r.Post("/login", h.handleLogin)
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)
			r.Get("/is_logged", h.handleIsLogged)
		})
	}

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	sub, err := jsonapi.DecodeSubmission(body, true)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	id, err := h.store.Create(r.Context(), sub)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Location", jsonapi.ResourceHref(id))
	jsonapi.WriteResource(w, http.StatusCreated, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, doc)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	sub, err := jsonapi.DecodeSubmission(body, false)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.Update(r.Context(), id, sub); err != nil {
		h.writeStoreError(w, err)
		return
	}

	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, doc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

func (h *Handler) handleRelGet(w http.ResponseWriter, r *http.Request) {
	block, err := h.store.RelGet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "rel"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteRelationship(w, http.StatusOK, block)
}

func (h *Handler) handleRelReplace(w http.ResponseWriter, r *http.Request) {
	h.handleRelWrite(w, r, h.store.RelReplace)
}

func (h *Handler) handleRelAppend(w http.ResponseWriter, r *http.Request) {
	h.handleRelWrite(w, r, h.store.RelAppend)
}

func (h *Handler) handleRelWrite(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id, name string, input jsonapi.RelationshipInput) error) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var input jsonapi.RelationshipInput
	if err := decodeJSON(body, &input); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "rel")
	if err := apply(r.Context(), id, name, input); err != nil {
		h.writeStoreError(w, err)
		return
	}

	block, err := h.store.RelGet(r.Context(), id, name)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteRelationship(w, http.StatusOK, block)
}

// readBody enforces the JSON media types and the size cap.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	ct := r.Header.Get("Content-Type")
	if base, _, found := strings.Cut(ct, ";"); found {
		ct = base
	}
	ct = strings.TrimSpace(ct)
	if ct != "" && ct != "application/json" && ct != jsonapi.ContentType {
		jsonapi.WriteError(w, jsonapi.ErrNotJSON(ct))
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("failed to read request body"))
		return nil, false
	}
	return body, true
}

// writeStoreError maps service errors onto wire errors.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	var (
		vErr  *app.ValidationError
		nfErr *app.NotFoundError
		rnErr *app.RelationshipNotFoundError
		dErr  *app.DanglingReferenceError
		sfErr *app.SchemaFetchError
		smErr *app.SchemaFormatError
	)

	switch {
	case errors.As(err, &vErr):
		jsonapi.WriteError(w, jsonapi.ErrValidation(vErr.Code, vErr.Field, vErr.Reason))
	case errors.As(err, &nfErr):
		jsonapi.WriteError(w, jsonapi.ErrNotFound(nfErr.ID))
	case errors.As(err, &rnErr):
		jsonapi.WriteError(w, jsonapi.ErrRelationshipNotFound(rnErr.ID, rnErr.Rel))
	case errors.As(err, &dErr):
		h.logger.Error().Err(err).Msg("dangling reference")
		jsonapi.WriteError(w, jsonapi.ErrDanglingReference(dErr.ID, dErr.Rel))
	case errors.As(err, &sfErr):
		h.logger.Error().Err(err).Str("type", sfErr.TypeID).Msg("schema fetch failed")
		jsonapi.WriteError(w, jsonapi.ErrSchemaUnavailable(sfErr.TypeID))
	case errors.As(err, &smErr):
		h.logger.Error().Err(err).Str("type", smErr.TypeID).Msg("schema malformed")
		jsonapi.WriteError(w, jsonapi.ErrSchemaUnavailable(smErr.TypeID))
	default:
		h.logger.Error().Err(err).Msg("request failed")
		jsonapi.WriteError(w, jsonapi.ErrInternal(""))
	}
}

func decodeJSON(body []byte, v any) error {
	return json.Unmarshal(body, v)
}

func statusLabel(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status)
}

// observe logs each request and records HTTP metrics.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")

		if h.metrics != nil {
			h.metrics.RequestsTotal.WithLabelValues(r.Method, route, statusLabel(ww.Status())).Inc()
			h.metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		}
	})
}
