package registry

import (
	"testing"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSnapshot() model.Snapshot {
	return model.Snapshot{
		Users: model.Users{
			Admins: []model.Admin{
				{Username: "root", Password: "root", Name: "Root Admin"},
			},
			Students: []model.Student{
				{Username: "dana", Password: "pw", Name: "Dana"},
				{Username: "lee", Password: "pw", Name: "Lee"},
			},
		},
		Courses: []model.Course{
			course("cse101", "CSE101", []string{"Mon", "Wed"}, "09:00", "10:30"),
			course("mat201", "MAT201", []string{"Tue", "Thu"}, "11:00", "12:30"),
		},
	}
}

func TestAddCourse(t *testing.T) {
	snap := baseSnapshot()
	next, err := AddCourse(snap, course("phy110", "PHY110", []string{"Fri"}, "13:00", "14:00"))
	require.NoError(t, err)
	assert.Len(t, next.Courses, 3)
	assert.Len(t, snap.Courses, 2, "input snapshot must stay untouched")
}

func TestAddCourseGeneratesID(t *testing.T) {
	c := course("", "PHY110", []string{"Fri"}, "13:00", "14:00")
	next, err := AddCourse(baseSnapshot(), c)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Courses[2].ID)
}

func TestAddCourseDuplicateID(t *testing.T) {
	_, err := AddCourse(baseSnapshot(), course("cse101", "X", []string{"Fri"}, "13:00", "14:00"))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAddCourseRejectsBadTimes(t *testing.T) {
	_, err := AddCourse(baseSnapshot(), course("x", "X", []string{"Fri"}, "25:00", "26:00"))
	assert.ErrorIs(t, err, timeutil.ErrInvalidTimeFormat)

	_, err = AddCourse(baseSnapshot(), course("x", "X", []string{"Fri"}, "14:00", "13:00"))
	assert.Error(t, err, "end before start must be rejected")

	_, err = AddCourse(baseSnapshot(), course("x", "X", []string{"Fri"}, "13:00", "13:00"))
	assert.Error(t, err, "zero-length interval must be rejected")
}

func TestUpdateCourse(t *testing.T) {
	updated := course("cse101", "CSE101", []string{"Mon"}, "09:00", "09:50")
	updated.Seats = 5
	next, err := UpdateCourse(baseSnapshot(), updated)
	require.NoError(t, err)
	got := next.CourseByID("cse101")
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Seats)
	assert.Equal(t, []string{"Mon"}, got.Days)
}

func TestUpdateCourseUnknownIDIsNoOp(t *testing.T) {
	snap := baseSnapshot()
	next, err := UpdateCourse(snap, course("nope", "X", []string{"Fri"}, "13:00", "14:00"))
	require.NoError(t, err)
	assert.Equal(t, snap, next)
}

func TestDeleteCourseCascades(t *testing.T) {
	snap := baseSnapshot()
	snap, err := Register(snap, "dana", "cse101")
	require.NoError(t, err)
	snap, err = Register(snap, "lee", "cse101")
	require.NoError(t, err)

	next := DeleteCourse(snap, "cse101")
	assert.Nil(t, next.CourseByID("cse101"))
	for _, s := range next.Users.Students {
		assert.NotContains(t, s.Registrations, "cse101")
	}
	// The pre-delete snapshot still shows the registrations.
	assert.True(t, snap.StudentByUsername("dana").Registered("cse101"))
}

func TestDeleteCourseUnknownIDIsNoOp(t *testing.T) {
	snap := baseSnapshot()
	assert.Equal(t, snap, DeleteCourse(snap, "nope"))
}

func TestAddUserNamespaces(t *testing.T) {
	snap := baseSnapshot()

	_, err := AddAdmin(snap, model.Admin{Username: "root", Password: "x", Name: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = AddStudent(snap, model.Student{Username: "dana", Password: "x", Name: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Admin and student namespaces are independent.
	next, err := AddStudent(snap, model.Student{Username: "root", Password: "x", Name: "Root Student"})
	require.NoError(t, err)
	assert.NotNil(t, next.StudentByUsername("root"))

	// New students always start with an empty registration list.
	next, err = AddStudent(snap, model.Student{
		Username:      "mia",
		Password:      "x",
		Name:          "Mia",
		Registrations: []string{"cse101"},
	})
	require.NoError(t, err)
	assert.Empty(t, next.StudentByUsername("mia").Registrations)
}

func TestRegisterScenario(t *testing.T) {
	// CSE101 Mon/Wed 09:00–10:30 and MAT201 Tue/Thu 11:00–12:30 share no
	// day, so one student can hold both. CSE102 Mon 09:30–10:00 overlaps
	// CSE101 and must be rejected.
	snap := baseSnapshot()
	snap, err := AddCourse(snap, course("cse102", "CSE102", []string{"Mon"}, "09:30", "10:00"))
	require.NoError(t, err)

	snap, err = Register(snap, "dana", "cse101")
	require.NoError(t, err)
	snap, err = Register(snap, "dana", "mat201")
	require.NoError(t, err)

	_, err = Register(snap, "dana", "cse102")
	assert.ErrorIs(t, err, ErrConflict)

	// Lee has no CSE101 registration, so CSE102 is fine for them.
	next, err := Register(snap, "lee", "cse102")
	require.NoError(t, err)
	assert.True(t, next.StudentByUsername("lee").Registered("cse102"))
}

func TestRegisterSeatEnforcement(t *testing.T) {
	snap := baseSnapshot()
	capped := course("tiny", "TINY", []string{"Fri"}, "09:00", "10:00")
	capped.Seats = 1
	snap, err := AddCourse(snap, capped)
	require.NoError(t, err)

	snap, err = Register(snap, "dana", "tiny")
	require.NoError(t, err)

	_, err = Register(snap, "lee", "tiny")
	assert.ErrorIs(t, err, ErrSeatsFull)
	// The rejected student's list is unchanged.
	assert.Empty(t, snap.StudentByUsername("lee").Registrations)
}

func TestRegisterZeroSeatsMeansUnlimited(t *testing.T) {
	snap := baseSnapshot()
	open := course("open", "OPEN", []string{"Fri"}, "09:00", "10:00")
	open.Seats = 0
	snap, err := AddCourse(snap, open)
	require.NoError(t, err)

	snap, err = Register(snap, "dana", "open")
	require.NoError(t, err)
	_, err = Register(snap, "lee", "open")
	assert.NoError(t, err)
}

func TestRegisterGuards(t *testing.T) {
	snap := baseSnapshot()

	_, err := Register(snap, "dana", "nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = Register(snap, "ghost", "cse101")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	snap, err = Register(snap, "dana", "cse101")
	require.NoError(t, err)
	_, err = Register(snap, "dana", "cse101")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestUnregister(t *testing.T) {
	snap := baseSnapshot()
	snap, err := Register(snap, "dana", "cse101")
	require.NoError(t, err)

	next, err := Unregister(snap, "dana", "cse101")
	require.NoError(t, err)
	assert.False(t, next.StudentByUsername("dana").Registered("cse101"))
	assert.True(t, snap.StudentByUsername("dana").Registered("cse101"), "input snapshot must stay untouched")

	// Unregistering something never held is a no-op.
	again, err := Unregister(next, "dana", "cse101")
	require.NoError(t, err)
	assert.Equal(t, next, again)

	_, err = Unregister(snap, "ghost", "cse101")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAuthenticate(t *testing.T) {
	snap := baseSnapshot()

	info, err := Authenticate(snap, "admin", "root", "root")
	require.NoError(t, err)
	assert.Equal(t, model.SessionInfo{Role: "admin", Username: "root", Name: "Root Admin"}, info)

	info, err = Authenticate(snap, "student", "dana", "pw")
	require.NoError(t, err)
	assert.Equal(t, "student", info.Role)

	// Wrong password, unknown user, and wrong role all look the same.
	_, err = Authenticate(snap, "student", "dana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(snap, "student", "ghost", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(snap, "admin", "dana", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
