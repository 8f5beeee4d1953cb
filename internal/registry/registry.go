// Package registry implements the registration core: catalog and account
// mutations over immutable store snapshots. Every operation takes the current
// snapshot by value and returns a fresh deep copy with the change applied;
// the input is never modified, so readers holding the old snapshot keep a
// consistent view.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/timeutil"
	"github.com/google/uuid"
)

// ErrDuplicateID is returned when a course id is already taken.
var ErrDuplicateID = errors.New("course id already exists")

// ErrDuplicateUsername is returned when a username is already taken within
// the target role's namespace.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrCourseNotFound is returned when a requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ErrStudentNotFound is returned when a requested student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrSeatsFull is returned when a course has no remaining seats.
var ErrSeatsFull = errors.New("course is fully booked")

// ErrConflict is returned when a course overlaps one the student already
// holds on a shared weekday.
var ErrConflict = errors.New("schedule conflict with a registered course")

// ErrAlreadyRegistered is returned when the student already holds a
// registration for the course.
var ErrAlreadyRegistered = errors.New("already registered for this course")

// ErrInvalidCredentials is returned on any login failure. Unknown usernames
// and wrong passwords are indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AddCourse appends a course to the catalog. An empty id gets a generated
// UUID; a taken id fails with ErrDuplicateID. Times must parse as "HH:MM"
// with the end strictly after the start.
func AddCourse(snap model.Snapshot, course model.Course) (model.Snapshot, error) {
	if err := validateTimes(course); err != nil {
		return model.Snapshot{}, err
	}
	if course.ID == "" {
		course.ID = uuid.New().String()
	} else if snap.CourseByID(course.ID) != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrDuplicateID, course.ID)
	}

	next := snap.Clone()
	next.Courses = append(next.Courses, course.Clone())
	return next, nil
}

// UpdateCourse replaces the course with a matching id. When the id is
// unknown the snapshot is returned unchanged; updating a missing course is
// not an error.
func UpdateCourse(snap model.Snapshot, course model.Course) (model.Snapshot, error) {
	if err := validateTimes(course); err != nil {
		return model.Snapshot{}, err
	}

	next := snap.Clone()
	for i := range next.Courses {
		if next.Courses[i].ID == course.ID {
			next.Courses[i] = course.Clone()
			break
		}
	}
	return next, nil
}

// DeleteCourse removes a course and purges its id from every student's
// registration list. Deleting an unknown id is a no-op.
func DeleteCourse(snap model.Snapshot, id string) model.Snapshot {
	next := snap.Clone()
	next.Courses = slices.DeleteFunc(next.Courses, func(c model.Course) bool {
		return c.ID == id
	})
	for i := range next.Users.Students {
		s := &next.Users.Students[i]
		s.Registrations = slices.DeleteFunc(s.Registrations, func(cid string) bool {
			return cid == id
		})
	}
	return next
}

// AddAdmin appends an administrator account. Usernames are unique among
// admins only; a student may hold the same username.
func AddAdmin(snap model.Snapshot, admin model.Admin) (model.Snapshot, error) {
	for i := range snap.Users.Admins {
		if snap.Users.Admins[i].Username == admin.Username {
			return model.Snapshot{}, fmt.Errorf("%w: admin %q", ErrDuplicateUsername, admin.Username)
		}
	}
	next := snap.Clone()
	next.Users.Admins = append(next.Users.Admins, admin)
	return next, nil
}

// AddStudent appends a student account with an empty registration list.
// Usernames are unique among students only.
func AddStudent(snap model.Snapshot, student model.Student) (model.Snapshot, error) {
	if snap.StudentByUsername(student.Username) != nil {
		return model.Snapshot{}, fmt.Errorf("%w: student %q", ErrDuplicateUsername, student.Username)
	}
	student.Registrations = nil
	next := snap.Clone()
	next.Users.Students = append(next.Users.Students, student)
	return next, nil
}

// Register adds courseID to the student's registration list after the full
// guard sequence: the course and student must exist, the student must not
// already hold the course, a seat must remain, and the course must not
// conflict with anything already registered.
func Register(snap model.Snapshot, studentUsername, courseID string) (model.Snapshot, error) {
	course := snap.CourseByID(courseID)
	if course == nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrCourseNotFound, courseID)
	}
	student := snap.StudentByUsername(studentUsername)
	if student == nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrStudentNotFound, studentUsername)
	}
	if student.Registered(courseID) {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrAlreadyRegistered, course.Code)
	}
	if !course.Unlimited() && snap.SeatUsage(courseID) >= course.Seats {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrSeatsFull, course.Code)
	}
	for _, registeredID := range student.Registrations {
		registered := snap.CourseByID(registeredID)
		if registered != nil && Conflicts(*registered, *course) {
			return model.Snapshot{}, fmt.Errorf("%w: %q overlaps %q", ErrConflict, course.Code, registered.Code)
		}
	}

	next := snap.Clone()
	s := next.StudentByUsername(studentUsername)
	s.Registrations = append(s.Registrations, courseID)
	return next, nil
}

// Unregister removes courseID from the student's registration list.
// Removing an id the student does not hold is a no-op, not an error.
func Unregister(snap model.Snapshot, studentUsername, courseID string) (model.Snapshot, error) {
	if snap.StudentByUsername(studentUsername) == nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrStudentNotFound, studentUsername)
	}
	next := snap.Clone()
	s := next.StudentByUsername(studentUsername)
	s.Registrations = slices.DeleteFunc(s.Registrations, func(cid string) bool {
		return cid == courseID
	})
	return next, nil
}

// Authenticate checks credentials against the given role's namespace and
// returns a session summary. Comparison is plaintext; this system stores
// passwords as entered.
func Authenticate(snap model.Snapshot, role, username, password string) (model.SessionInfo, error) {
	switch role {
	case "admin":
		for i := range snap.Users.Admins {
			a := &snap.Users.Admins[i]
			if a.Username == username && a.Password == password {
				return model.SessionInfo{Role: role, Username: a.Username, Name: a.Name}, nil
			}
		}
	case "student":
		for i := range snap.Users.Students {
			s := &snap.Users.Students[i]
			if s.Username == username && s.Password == password {
				return model.SessionInfo{Role: role, Username: s.Username, Name: s.Name}, nil
			}
		}
	}
	return model.SessionInfo{}, ErrInvalidCredentials
}

func validateTimes(course model.Course) error {
	start, err := timeutil.ParseClock(course.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := timeutil.ParseClock(course.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end time %q must be after start time %q", course.EndTime, course.StartTime)
	}
	return nil
}
