// Package handler exposes lifecycle managers as chi resources. One generic
// Resource serves every catalog kind under the same route shape.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"channelling/internal/lifecycle"
	dErrors "channelling/pkg/domain-errors"
	"channelling/pkg/platform/httputil"
	"channelling/pkg/requestcontext"
)

// Service defines the lifecycle operations a resource exposes.
type Service[T lifecycle.Record] interface {
	Kind() string
	Descriptor() lifecycle.Descriptor[T]
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id int64) (T, error)
	FindByStatus(ctx context.Context, status lifecycle.Status) ([]T, error)
	FindByCode(ctx context.Context, code string) (T, error)
	FindByReference(ctx context.Context, field string, id int64) ([]T, error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id int64, payload T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Mountable is a resource that can be registered on a router. It lets callers
// hold resources of different entity types in one slice.
type Mountable interface {
	Route() string
	Kind() string
	Register(r chi.Router)
}

// Resource serves one entity kind under /{route}.
type Resource[T lifecycle.Record] struct {
	route   string
	service Service[T]
	logger  *slog.Logger
}

// New creates a Resource mounted at route, e.g. "countries".
func New[T lifecycle.Record](route string, service Service[T], logger *slog.Logger) *Resource[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resource[T]{
		route:   strings.Trim(route, "/"),
		service: service,
		logger:  logger,
	}
}

// Route returns the path segment the resource is mounted at.
func (h *Resource[T]) Route() string {
	return h.route
}

// Kind returns the entity kind served.
func (h *Resource[T]) Kind() string {
	return h.service.Kind()
}

// Register mounts the resource routes under /{route}.
func (h *Resource[T]) Register(r chi.Router) {
	r.Route("/"+h.route, func(r chi.Router) {
		r.Get("/all", h.handleFindAll)
		r.Get("/status/{status}", h.handleFindByStatus)
		r.Get("/code/{code}", h.handleFindByCode)
		r.Get("/by/{field}/{id}", h.handleFindByReference)
		r.Get("/{id}", h.handleFindByID)
		r.Post("/save", h.handleCreate)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Resource[T]) handleFindAll(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.FindAll(r.Context())
	h.writeList(w, r, recs, err)
}

func (h *Resource[T]) handleFindByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Resource[T]) handleFindByStatus(w http.ResponseWriter, r *http.Request) {
	status := lifecycle.Status(strings.ToUpper(chi.URLParam(r, "status")))
	recs, err := h.service.FindByStatus(r.Context(), status)
	h.writeList(w, r, recs, err)
}

func (h *Resource[T]) handleFindByCode(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Resource[T]) handleFindByReference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	recs, err := h.service.FindByReference(r.Context(), chi.URLParam(r, "field"), id)
	h.writeList(w, r, recs, err)
}

func (h *Resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.service.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payload, err := h.decode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Resource[T]) decode(r *http.Request) (T, error) {
	payload := h.service.Descriptor().New()
	if err := httputil.DecodeJSON(r, payload); err != nil {
		var zero T
		return zero, err
	}
	return payload, nil
}

// writeList answers 204 for an empty result.
func (h *Resource[T]) writeList(w http.ResponseWriter, r *http.Request, recs []T, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(recs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}

func (h *Resource[T]) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"kind", h.service.Kind(),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	} else {
		h.logger.DebugContext(ctx, "request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"kind", h.service.Kind(),
			"code", code,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid id: "+raw)
	}
	return id, nil
}
