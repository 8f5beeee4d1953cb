package registry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/model"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/timeutil"
)

// Conflicts reports whether two courses occupy a shared weekday with
// overlapping time intervals. Symmetric in its arguments.
//
// Course times are validated on creation, so the parses below cannot fail
// for courses that went through AddCourse/UpdateCourse. Courses loaded from
// a snapshot that predates validation degrade to "no conflict".
func Conflicts(a, b model.Course) bool {
	if !sharesDay(a.Days, b.Days) {
		return false
	}
	aStart, err := timeutil.ParseClock(a.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := timeutil.ParseClock(a.EndTime)
	if err != nil {
		return false
	}
	bStart, err := timeutil.ParseClock(b.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := timeutil.ParseClock(b.EndTime)
	if err != nil {
		return false
	}
	return timeutil.Overlaps(aStart, aEnd, bStart, bEnd)
}

func sharesDay(a, b []string) bool {
	for _, day := range a {
		if slices.Contains(b, day) {
			return true
		}
	}
	return false
}

// weekdayRank orders timetable days Monday-first. Labels outside the
// canonical set sort after the known weekdays, alphabetically.
var weekdayRank = map[string]int{
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4, "Sat": 5, "Sun": 6,
}

// BuildTimetable lays out a student's registered courses as a weekly
// schedule: one entry per weekday carrying at least one course, days in
// Monday-first order, each day's slots sorted by start time.
func BuildTimetable(snap model.Snapshot, studentUsername string) (model.Timetable, error) {
	student := snap.StudentByUsername(studentUsername)
	if student == nil {
		return model.Timetable{}, fmt.Errorf("%w: %q", ErrStudentNotFound, studentUsername)
	}

	byDay := make(map[string][]model.TimetableSlot)
	for _, id := range student.Registrations {
		course := snap.CourseByID(id)
		if course == nil {
			continue
		}
		slot := model.TimetableSlot{
			CourseID:  course.ID,
			Name:      course.Name,
			Code:      course.Code,
			StartTime: course.StartTime,
			EndTime:   course.EndTime,
		}
		for _, day := range course.Days {
			byDay[day] = append(byDay[day], slot)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		ri, iKnown := weekdayRank[days[i]]
		rj, jKnown := weekdayRank[days[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return days[i] < days[j]
		}
	})

	tt := model.Timetable{Student: studentUsername, Days: make([]model.TimetableDay, 0, len(days))}
	for _, day := range days {
		slots := byDay[day]
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].StartTime < slots[j].StartTime
		})
		tt.Days = append(tt.Days, model.TimetableDay{Day: day, Slots: slots})
	}
	return tt, nil
}
