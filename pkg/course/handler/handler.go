// Package handler exposes a course.Repository over HTTP.
//
// Routes:
//
//	GET    /courses       list all courses
//	GET    /courses/{id}  get one course
//	POST   /courses       create a course with a generated id
//	PUT    /courses/{id}  merge fields into a course
//	DELETE /courses/{id}  remove a course
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"courseflow/pkg/course"
	"courseflow/pkg/idgen"
	"courseflow/pkg/logger"
	"courseflow/pkg/otel"
)

// MaxBodyBytes caps the size of a create or update request body.
const MaxBodyBytes = 1 << 20

// Handler serves the course resource.
type Handler struct {
	repo course.Repository
	ids  idgen.Generator
	log  *logger.Logger
}

// New creates a Handler.
func New(repo course.Repository, ids idgen.Generator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, ids: ids, log: log}
}

// RegisterRoutes mounts the course routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/courses").Subrouter()
	api.HandleFunc("", h.list).Methods(http.MethodGet)
	api.HandleFunc("", h.create).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", h.delete).Methods(http.MethodDelete)
}

// errorResponse is the body of every 4xx/5xx response that carries one.
type errorResponse struct {
	Error string `json:"error"`
}

// list returns every course.
// @Summary List all courses
// @Tags courses
// @Produce json
// @Success 200 {array} course.Course
// @Failure 500 {object} handler.errorResponse
// @Router /courses [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCourses")
	defer span.End()

	courses, err := h.repo.List(ctx)
	if err != nil {
		h.log.Error(ctx, "list courses", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	span.SetAttributes(attribute.Int("courses.count", len(courses)))
	respondJSON(w, http.StatusOK, courses)
}

// get returns a course by id.
// @Summary Get the course by id
// @Tags courses
// @Produce json
// @Param id path string true "The course id"
// @Success 200 {object} course.Course
// @Failure 404 "The course was not found"
// @Router /courses/{id} [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx, span := otel.AddSpan(r.Context(), "getCourse", attribute.String("course.id", id))
	defer span.End()

	c, err := h.repo.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get course", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// create stores a new course under a generated id.
// @Summary Create a new course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body course.Course true "Course fields; any id is replaced"
// @Success 200 {object} course.Course
// @Failure 400 {object} handler.errorResponse
// @Failure 413 {object} handler.errorResponse
// @Failure 500 {object} handler.errorResponse
// @Router /courses [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createCourse")
	defer span.End()

	body, err := decodeBody(w, r)
	if err != nil {
		respondDecodeError(w, err)
		return
	}
	if err := body.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	id, err := h.ids.Generate()
	if err != nil {
		h.log.Error(ctx, "create course", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	c := body.WithID(id)
	span.SetAttributes(attribute.String("course.id", id))

	if err := h.repo.Create(ctx, c); err != nil {
		h.fail(ctx, w, "create course", err)
		return
	}
	h.log.Info(ctx, "course created", "id", id)
	respondJSON(w, http.StatusOK, c)
}

// update merges the supplied fields into a course.
// @Summary Update the course by id
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "The course id"
// @Param course body course.Course true "Fields to change; id is ignored"
// @Success 200 {object} course.Course
// @Failure 400 {object} handler.errorResponse
// @Failure 404 "The course was not found"
// @Failure 413 {object} handler.errorResponse
// @Failure 500 {object} handler.errorResponse
// @Router /courses/{id} [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx, span := otel.AddSpan(r.Context(), "updateCourse", attribute.String("course.id", id))
	defer span.End()

	fields, err := decodeBody(w, r)
	if err != nil {
		respondDecodeError(w, err)
		return
	}
	updated, err := h.repo.Update(ctx, id, fields)
	if err != nil {
		h.fail(ctx, w, "update course", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// delete removes a course.
// @Summary Remove the course by id
// @Tags courses
// @Param id path string true "The course id"
// @Success 200 "The course was deleted"
// @Failure 404 "The course was not found"
// @Failure 500 {object} handler.errorResponse
// @Router /courses/{id} [delete]
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx, span := otel.AddSpan(r.Context(), "deleteCourse", attribute.String("course.id", id))
	defer span.End()

	if err := h.repo.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "delete course", err)
		return
	}
	h.log.Info(ctx, "course deleted", "id", id)
	w.WriteHeader(http.StatusOK)
}

// fail maps a repository error onto a response. Misses are 404 with no
// body.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, course.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, course.ErrInvalid):
		respondError(w, http.StatusBadRequest, err)
	default:
		h.log.Error(ctx, op, "error", err)
		respondError(w, http.StatusInternalServerError, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request) (course.Course, error) {
	return course.Decode(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	respondError(w, http.StatusBadRequest, err)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}
