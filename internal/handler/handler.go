// Package handler contains the chi HTTP handlers that translate requests
// and responses to and from the registration service. It carries no
// business logic; every decision is made by the service and the registry.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/registry"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/service"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/timeutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// RegistrationHandler holds all HTTP handlers for the registration API.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Routes mounts every API route on a fresh router.
func (h *RegistrationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", HealthCheck)
	r.Post("/login", h.Login)

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Post("/", h.CreateCourse)
		r.Get("/{id}", h.GetCourse)
		r.Put("/{id}", h.UpdateCourse)
		r.Delete("/{id}", h.DeleteCourse)
		r.Get("/{id}/seats", h.SeatInfo)
	})

	r.Post("/users", h.CreateUser)

	r.Route("/students/{username}", func(r chi.Router) {
		r.Post("/registrations", h.Register)
		r.Delete("/registrations/{courseID}", h.Unregister)
		r.Get("/timetable", h.Timetable)
	})

	return r
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// renderError maps a domain error onto an HTTP status and the standard
// error envelope. The message is the operation's human-readable rejection
// reason, which the UI shows in its status line.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, registry.ErrCourseNotFound),
		errors.Is(err, registry.ErrStudentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrDuplicateID),
		errors.Is(err, registry.ErrDuplicateUsername),
		errors.Is(err, registry.ErrSeatsFull),
		errors.Is(err, registry.ErrConflict),
		errors.Is(err, registry.ErrAlreadyRegistered):
		status = http.StatusConflict
	case errors.Is(err, registry.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, timeutil.ErrInvalidTimeFormat):
		status = http.StatusBadRequest
	}
	render.Status(r, status)
	render.JSON(w, r, model.ErrorResponse{Error: err.Error()})
}

// Login handles POST /login.
func (h *RegistrationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	info, err := h.svc.Login(req)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// ListCourses handles GET /courses.
func (h *RegistrationHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses := h.svc.ListCourses()
	// Empty array rather than null for client compatibility.
	if courses == nil {
		courses = []model.Course{}
	}
	render.JSON(w, r, courses)
}

// CreateCourse handles POST /courses.
func (h *RegistrationHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	course, err := h.svc.CreateCourse(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, course)
}

// GetCourse handles GET /courses/{id}.
func (h *RegistrationHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.svc.GetCourse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, course)
}

// UpdateCourse handles PUT /courses/{id}. Updating an unknown id succeeds
// without effect, per the store contract.
func (h *RegistrationHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	course, err := h.svc.UpdateCourse(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, course)
}

// DeleteCourse handles DELETE /courses/{id}. Idempotent.
func (h *RegistrationHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// SeatInfo handles GET /courses/{id}/seats.
func (h *RegistrationHandler) SeatInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.SeatInfo(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// CreateUser handles POST /users.
func (h *RegistrationHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if err := h.svc.CreateUser(r.Context(), req); err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"username": req.Username, "role": req.Role})
}

// Register handles POST /students/{username}/registrations.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	username := chi.URLParam(r, "username")
	if err := h.svc.Register(r.Context(), username, req.CourseID); err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"student": username, "course_id": req.CourseID})
}

// Unregister handles DELETE /students/{username}/registrations/{courseID}.
// Dropping a registration the student does not hold is still a 204.
func (h *RegistrationHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	courseID := chi.URLParam(r, "courseID")
	if err := h.svc.Unregister(r.Context(), username, courseID); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Timetable handles GET /students/{username}/timetable.
func (h *RegistrationHandler) Timetable(w http.ResponseWriter, r *http.Request) {
	tt, err := h.svc.Timetable(chi.URLParam(r, "username"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	if tt.Days == nil {
		tt.Days = []model.TimetableDay{}
	}
	render.JSON(w, r, tt)
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
