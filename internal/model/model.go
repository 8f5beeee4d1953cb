// Package model defines the core domain types for the course registration system.
package model

import "slices"

// Course is a catalog entry students can register for.
type Course struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Days        []string `json:"days"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	DateRange   string   `json:"date_range"`
	Seats       int      `json:"seats"`
}

// Unlimited reports whether the course has no seat cap.
func (c *Course) Unlimited() bool {
	return c.Seats <= 0
}

// Clone returns a deep copy of the course.
func (c Course) Clone() Course {
	c.Days = slices.Clone(c.Days)
	return c
}

// Admin is an administrator account. Passwords are stored and compared in
// plaintext; credential security is out of scope for this system.
type Admin struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Student is a student account together with its ordered registration list.
type Student struct {
	Username      string   `json:"username"`
	Password      string   `json:"password"`
	Name          string   `json:"name"`
	Registrations []string `json:"registrations"`
}

// Registered reports whether the student holds a registration for courseID.
func (s *Student) Registered(courseID string) bool {
	return slices.Contains(s.Registrations, courseID)
}

// Clone returns a deep copy of the student.
func (s Student) Clone() Student {
	s.Registrations = slices.Clone(s.Registrations)
	return s
}

// Users groups the two account namespaces. Admin and student usernames are
// independent; an admin and a student may share a username.
type Users struct {
	Admins   []Admin   `json:"admins"`
	Students []Student `json:"students"`
}

// Snapshot is the full system state at one point in time. Every mutation
// produces a fresh Snapshot; a Snapshot handed out to a reader is never
// modified afterwards. Its JSON form is exactly the persisted document.
type Snapshot struct {
	Users   Users    `json:"users"`
	Courses []Course `json:"courses"`
}

// Clone returns a deep copy of the snapshot. Operations clone before they
// touch anything so callers keep an unmodified view.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users: Users{
			Admins:   slices.Clone(s.Users.Admins),
			Students: make([]Student, len(s.Users.Students)),
		},
		Courses: make([]Course, len(s.Courses)),
	}
	for i, st := range s.Users.Students {
		out.Users.Students[i] = st.Clone()
	}
	for i, c := range s.Courses {
		out.Courses[i] = c.Clone()
	}
	return out
}

// CourseByID returns a pointer into the snapshot's course slice, or nil.
func (s *Snapshot) CourseByID(id string) *Course {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return &s.Courses[i]
		}
	}
	return nil
}

// StudentByUsername returns a pointer into the snapshot's student slice, or nil.
func (s *Snapshot) StudentByUsername(username string) *Student {
	for i := range s.Users.Students {
		if s.Users.Students[i].Username == username {
			return &s.Users.Students[i]
		}
	}
	return nil
}

// SeatUsage counts students holding a registration for courseID.
func (s *Snapshot) SeatUsage(courseID string) int {
	n := 0
	for i := range s.Users.Students {
		if s.Users.Students[i].Registered(courseID) {
			n++
		}
	}
	return n
}

// ─── Request / response payloads ─────────────────────────────────────────────

// CreateCourseRequest is the payload for creating a catalog entry.
// ID is optional; a UUID is generated when it is empty.
type CreateCourseRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Code        string   `json:"code" validate:"required"`
	Description string   `json:"description"`
	Days        []string `json:"days" validate:"required,min=1,dive,required"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	DateRange   string   `json:"date_range"`
	Seats       int      `json:"seats" validate:"gte=0"`
}

// CreateUserRequest is the payload for creating an account in either role.
type CreateUserRequest struct {
	Role     string `json:"role" validate:"required,oneof=admin student"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// RegisterRequest is the payload for registering a student into a course.
type RegisterRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// LoginRequest is the payload for a credential check.
type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=admin student"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionInfo is what a successful login returns. No token: the system has
// no session machinery, the caller just learns who it authenticated as.
type SessionInfo struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// SeatInfo summarises seat availability for one course.
type SeatInfo struct {
	CourseID  string `json:"course_id"`
	Seats     int    `json:"seats"`
	Used      int    `json:"used"`
	Unlimited bool   `json:"unlimited"`
}

// TimetableSlot is one course occurrence on one weekday.
type TimetableSlot struct {
	CourseID  string `json:"course_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Timetable is a student's weekly schedule, one entry per weekday that has
// at least one registered course, in Monday-first order.
type Timetable struct {
	Student string         `json:"student"`
	Days    []TimetableDay `json:"days"`
}

// TimetableDay groups the slots of a single weekday, sorted by start time.
type TimetableDay struct {
	Day   string          `json:"day"`
	Slots []TimetableSlot `json:"slots"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
