// Package storage persists store snapshots. The whole system state is one
// JSON document, `{"users": {"admins": [...], "students": [...]},
// "courses": [...]}`, written in full after every successful mutation and
// read back in full on startup. Two backends exist: a local file (default)
// and a single-row Postgres table.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/sirupsen/logrus"
)

// Store reads and writes the snapshot document.
type Store interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

// FileStore keeps the snapshot document in a single local file under one
// well-known path, the way a browser UI would keep it under one storage key.
type FileStore struct {
	path string
	log  *logrus.Logger
}

// NewFileStore constructs a FileStore writing to path.
func NewFileStore(path string, log *logrus.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Load reads the snapshot document. A missing or unparsable file is not an
// error: the store silently resets to the default dataset, logging the
// reason. Callers always get a usable snapshot.
func (s *FileStore) Load(_ context.Context) (model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("path", s.path).
				Warn("snapshot unreadable, resetting to default dataset")
		}
		return DefaultSnapshot(), nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).WithField("path", s.path).
			Warn("snapshot corrupt, resetting to default dataset")
		return DefaultSnapshot(), nil
	}
	return snap, nil
}

// Save writes the snapshot document atomically: marshal, write to a temp
// file in the same directory, rename over the target. A crash mid-write
// leaves the previous document intact.
func (s *FileStore) Save(_ context.Context, snap model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// DefaultSnapshot returns the demo dataset the system boots with when no
// persisted state exists: two admins, two students, two courses.
func DefaultSnapshot() model.Snapshot {
	return model.Snapshot{
		Users: model.Users{
			Admins: []model.Admin{
				{Username: "admin", Password: "admin123", Name: "Site Admin"},
				{Username: "registrar", Password: "registrar123", Name: "Registrar"},
			},
			Students: []model.Student{
				{Username: "alice", Password: "alice123", Name: "Alice Chen", Registrations: []string{}},
				{Username: "bob", Password: "bob123", Name: "Bob Reyes", Registrations: []string{}},
			},
		},
		Courses: []model.Course{
			{
				ID:          "cse101",
				Name:        "Introduction to Computer Science",
				Code:        "CSE101",
				Description: "Fundamentals of programming and problem solving.",
				Days:        []string{"Mon", "Wed"},
				StartTime:   "09:00",
				EndTime:     "10:30",
				DateRange:   "Sep 1 to Dec 15",
				Seats:       30,
			},
			{
				ID:          "mat201",
				Name:        "Linear Algebra",
				Code:        "MAT201",
				Description: "Vector spaces, matrices, and linear maps.",
				Days:        []string{"Tue", "Thu"},
				StartTime:   "11:00",
				EndTime:     "12:30",
				DateRange:   "Sep 1 to Dec 15",
				Seats:       25,
			},
		},
	}
}
