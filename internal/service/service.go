// Package service orchestrates the registration core: it holds the current
// store snapshot, validates incoming requests, applies registry operations,
// and persists the resulting snapshot before making it visible.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/registry"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// RegistrationService exposes every store operation to the presentation
// layer. Mutations are serialised by a mutex; the logical model is still a
// single actor issuing one action at a time, the lock just keeps concurrent
// HTTP requests from interleaving an apply-persist-swap sequence.
type RegistrationService struct {
	mu       sync.RWMutex
	snapshot model.Snapshot
	store    storage.Store
	validate *validator.Validate
	log      *logrus.Logger
}

// New loads the initial snapshot from the store (or the default dataset)
// and returns a ready service.
func New(ctx context.Context, store storage.Store, log *logrus.Logger) (*RegistrationService, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load initial snapshot: %w", err)
	}
	log.WithFields(logrus.Fields{
		"admins":   len(snap.Users.Admins),
		"students": len(snap.Users.Students),
		"courses":  len(snap.Courses),
	}).Info("snapshot loaded")

	return &RegistrationService{
		snapshot: snap,
		store:    store,
		validate: validator.New(),
		log:      log,
	}, nil
}

// Snapshot returns the current state. The returned value is a complete
// snapshot no later mutation will touch.
func (s *RegistrationService) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// apply runs op against the current snapshot, persists the result, and
// swaps it in. The current snapshot stays in place when either step fails.
func (s *RegistrationService) apply(ctx context.Context, op func(model.Snapshot) (model.Snapshot, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.snapshot)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.snapshot = next
	return nil
}

// CreateCourse validates the request and adds the course to the catalog.
func (s *RegistrationService) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (model.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if err := s.validate.Struct(req); err != nil {
		return model.Course{}, fmt.Errorf("invalid course: %w", err)
	}

	course := model.Course{
		ID:          req.ID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Days:        req.Days,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DateRange:   req.DateRange,
		Seats:       req.Seats,
	}
	var created model.Course
	err := s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		next, err := registry.AddCourse(snap, course)
		if err != nil {
			return model.Snapshot{}, err
		}
		created = next.Courses[len(next.Courses)-1]
		return next, nil
	})
	if err != nil {
		return model.Course{}, err
	}
	return created, nil
}

// UpdateCourse replaces the course with the given id. Unknown ids are a
// silent no-op, mirroring the store contract.
func (s *RegistrationService) UpdateCourse(ctx context.Context, id string, req model.CreateCourseRequest) (model.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Course{}, fmt.Errorf("invalid course: %w", err)
	}
	course := model.Course{
		ID:          id,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Days:        req.Days,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DateRange:   req.DateRange,
		Seats:       req.Seats,
	}
	err := s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		return registry.UpdateCourse(snap, course)
	})
	if err != nil {
		return model.Course{}, err
	}
	return course, nil
}

// DeleteCourse removes a course and every registration pointing at it.
func (s *RegistrationService) DeleteCourse(ctx context.Context, id string) error {
	return s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		return registry.DeleteCourse(snap, id), nil
	})
}

// ListCourses returns the catalog.
func (s *RegistrationService) ListCourses() []model.Course {
	return s.Snapshot().Courses
}

// GetCourse returns a single course by id.
func (s *RegistrationService) GetCourse(id string) (model.Course, error) {
	snap := s.Snapshot()
	course := snap.CourseByID(id)
	if course == nil {
		return model.Course{}, fmt.Errorf("%w: %q", registry.ErrCourseNotFound, id)
	}
	return *course, nil
}

// SeatInfo reports usage and capacity for a course.
func (s *RegistrationService) SeatInfo(id string) (model.SeatInfo, error) {
	snap := s.Snapshot()
	course := snap.CourseByID(id)
	if course == nil {
		return model.SeatInfo{}, fmt.Errorf("%w: %q", registry.ErrCourseNotFound, id)
	}
	return model.SeatInfo{
		CourseID:  id,
		Seats:     course.Seats,
		Used:      snap.SeatUsage(id),
		Unlimited: course.Unlimited(),
	}, nil
}

// CreateUser adds an account to the requested role's namespace.
func (s *RegistrationService) CreateUser(ctx context.Context, req model.CreateUserRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	return s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		if req.Role == "admin" {
			return registry.AddAdmin(snap, model.Admin{
				Username: req.Username,
				Password: req.Password,
				Name:     req.Name,
			})
		}
		return registry.AddStudent(snap, model.Student{
			Username: req.Username,
			Password: req.Password,
			Name:     req.Name,
		})
	})
}

// Register books a seat for the student, enforcing capacity, duplicate, and
// conflict guards.
func (s *RegistrationService) Register(ctx context.Context, studentUsername, courseID string) error {
	return s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		return registry.Register(snap, studentUsername, courseID)
	})
}

// Unregister drops the student's registration for the course, if any.
func (s *RegistrationService) Unregister(ctx context.Context, studentUsername, courseID string) error {
	return s.apply(ctx, func(snap model.Snapshot) (model.Snapshot, error) {
		return registry.Unregister(snap, studentUsername, courseID)
	})
}

// Timetable builds the student's weekly schedule from the current snapshot.
func (s *RegistrationService) Timetable(studentUsername string) (model.Timetable, error) {
	return registry.BuildTimetable(s.Snapshot(), studentUsername)
}

// Login checks credentials and returns a session summary.
func (s *RegistrationService) Login(req model.LoginRequest) (model.SessionInfo, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.SessionInfo{}, registry.ErrInvalidCredentials
	}
	return registry.Authenticate(s.Snapshot(), req.Role, req.Username, req.Password)
}
