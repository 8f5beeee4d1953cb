package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/registry"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*RegistrationService, storage.Store) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"), log)
	svc, err := New(context.Background(), store, log)
	require.NoError(t, err)
	return svc, store
}

func courseRequest(id, code string, days []string, start, end string, seats int) model.CreateCourseRequest {
	return model.CreateCourseRequest{
		ID:        id,
		Name:      code,
		Code:      code,
		Days:      days,
		StartTime: start,
		EndTime:   end,
		Seats:     seats,
	}
}

func TestServiceBootsFromDefaultDataset(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Len(t, svc.ListCourses(), 2)
	_, err := svc.Login(model.LoginRequest{Role: "student", Username: "alice", Password: "alice123"})
	assert.NoError(t, err)
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.CreateCourse(ctx, courseRequest("phy110", "PHY110", []string{"Fri"}, "13:00", "14:00", 10))
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, "alice", "phy110"))

	// A fresh service over the same store sees the persisted state.
	log := logrus.New()
	log.SetOutput(io.Discard)
	reloaded, err := New(ctx, store, log)
	require.NoError(t, err)
	assert.Len(t, reloaded.ListCourses(), 3)
	tt, err := reloaded.Timetable("alice")
	require.NoError(t, err)
	require.Len(t, tt.Days, 1)
	assert.Equal(t, "Fri", tt.Days[0].Day)
}

func TestRejectedMutationLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateCourse(ctx, courseRequest("solo", "SOLO", []string{"Fri"}, "09:00", "10:00", 1))
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, "alice", "solo"))

	err = svc.Register(ctx, "bob", "solo")
	assert.ErrorIs(t, err, registry.ErrSeatsFull)

	info, err := svc.SeatInfo("solo")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Used)
}

func TestCreateCourseValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// Missing days.
	_, err := svc.CreateCourse(ctx, courseRequest("x", "X", nil, "09:00", "10:00", 10))
	assert.Error(t, err)

	// Negative seats.
	_, err = svc.CreateCourse(ctx, courseRequest("x", "X", []string{"Mon"}, "09:00", "10:00", -1))
	assert.Error(t, err)

	// Malformed time.
	_, err = svc.CreateCourse(ctx, courseRequest("x", "X", []string{"Mon"}, "9am", "10:00", 10))
	assert.Error(t, err)
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req := model.CreateUserRequest{Role: "student", Username: "mia", Password: "pw", Name: "Mia"}
	require.NoError(t, svc.CreateUser(ctx, req))

	err := svc.CreateUser(ctx, req)
	assert.ErrorIs(t, err, registry.ErrDuplicateUsername)

	_, err = svc.Login(model.LoginRequest{Role: "student", Username: "mia", Password: "pw"})
	assert.NoError(t, err)
	_, err = svc.Login(model.LoginRequest{Role: "student", Username: "mia", Password: "nope"})
	assert.ErrorIs(t, err, registry.ErrInvalidCredentials)
}

func TestDeleteCourseCascadesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "cse101"))
	require.NoError(t, svc.DeleteCourse(ctx, "cse101"))

	_, err := svc.GetCourse("cse101")
	assert.ErrorIs(t, err, registry.ErrCourseNotFound)
	tt, err := svc.Timetable("alice")
	require.NoError(t, err)
	assert.Empty(t, tt.Days)
}

func TestSeatInfoUnlimited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateCourse(ctx, courseRequest("open", "OPEN", []string{"Fri"}, "09:00", "10:00", 0))
	require.NoError(t, err)
	info, err := svc.SeatInfo("open")
	require.NoError(t, err)
	assert.True(t, info.Unlimited)
}
