package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Level selects how course simultaneity is interpreted.
type Level string

const (
	// LevelProgram flags different courses of one program and semester that share a time key.
	LevelProgram Level = "program"
	// LevelStudent flags different courses in one student's personal schedule that share a time key.
	LevelStudent Level = "student"
)

// Entry is the tuple the detector works on.
type Entry struct {
	SlotID    string          `json:"slot_id"`
	CourseID  string          `json:"course_id" validate:"required"`
	FacultyID string          `json:"faculty_id,omitempty"`
	RoomID    string          `json:"room_id,omitempty"`
	Program   string          `json:"program,omitempty"`
	Semester  int             `json:"semester,omitempty"`
	DayOfWeek models.Weekday  `json:"day_of_week" validate:"required"`
	StartTime string          `json:"start_time" validate:"required"`
	EndTime   string          `json:"end_time" validate:"required"`
	SlotType  models.SlotType `json:"slot_type,omitempty"`
}

// EntryFromSlot builds a detector entry. course may be nil when unknown.
func EntryFromSlot(slot models.ScheduleSlot, course *models.Course) Entry {
	e := Entry{
		SlotID:    slot.ID,
		CourseID:  slot.CourseID,
		DayOfWeek: slot.DayOfWeek,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		SlotType:  slot.SlotType,
	}
	if slot.FacultyID != nil {
		e.FacultyID = *slot.FacultyID
	}
	if slot.RoomID != nil {
		e.RoomID = *slot.RoomID
	}
	if course != nil {
		e.Program = course.Program
		e.Semester = course.Semester
	}
	return e
}

func (e Entry) key() TimeKey {
	return NewTimeKey(e.DayOfWeek, e.StartTime, e.EndTime)
}

type courseGroupKey struct {
	key      TimeKey
	program  string
	semester int
}

type resourceGroupKey struct {
	key TimeKey
	id  string
}

type group struct {
	slots   map[string]struct{}
	courses map[string]struct{}
}

func newGroup() *group {
	return &group{slots: map[string]struct{}{}, courses: map[string]struct{}{}}
}

func (g *group) add(e Entry) {
	g.slots[e.SlotID] = struct{}{}
	g.courses[e.CourseID] = struct{}{}
}

// Detect reports every simultaneity violation in entries. It never mutates
// its input and the result does not depend on the order of entries.
func Detect(entries []Entry, level Level) []models.Conflict {
	courseGroups := map[courseGroupKey]*group{}
	roomGroups := map[resourceGroupKey]*group{}
	facultyGroups := map[resourceGroupKey]*group{}

	for _, e := range entries {
		k := e.key()

		ck := courseGroupKey{key: k}
		if level == LevelProgram {
			ck.program, ck.semester = e.Program, e.Semester
		}
		if courseGroups[ck] == nil {
			courseGroups[ck] = newGroup()
		}
		courseGroups[ck].add(e)

		if e.RoomID != "" {
			rk := resourceGroupKey{key: k, id: e.RoomID}
			if roomGroups[rk] == nil {
				roomGroups[rk] = newGroup()
			}
			roomGroups[rk].add(e)
		}
		if e.FacultyID != "" {
			fk := resourceGroupKey{key: k, id: e.FacultyID}
			if facultyGroups[fk] == nil {
				facultyGroups[fk] = newGroup()
			}
			facultyGroups[fk].add(e)
		}
	}

	conflicts := make([]models.Conflict, 0)
	for ck, g := range courseGroups {
		if len(g.courses) < 2 {
			continue
		}
		conflicts = append(conflicts, courseConflict(level, ck, g))
	}
	for rk, g := range roomGroups {
		if len(g.slots) < 2 {
			continue
		}
		conflicts = append(conflicts, resourceConflict(models.ConflictRoomDoubleBooked, "room", rk, g))
	}
	for fk, g := range facultyGroups {
		if len(g.slots) < 2 {
			continue
		}
		conflicts = append(conflicts, resourceConflict(models.ConflictFacultyDoubleBooked, "faculty member", fk, g))
	}

	SortConflicts(conflicts)
	return conflicts
}

func courseConflict(level Level, ck courseGroupKey, g *group) models.Conflict {
	courses := sortedKeys(g.courses)
	c := models.Conflict{
		SlotIDs:   sortedKeys(g.slots),
		CourseIDs: courses,
		DayOfWeek: ck.key.Day,
		StartTime: ck.key.Start,
		EndTime:   ck.key.End,
	}
	if level == LevelStudent {
		c.Type = models.ConflictStudentTime
		c.Severity = models.SeverityHigh
		c.Description = fmt.Sprintf("courses %s meet at the same time on %s", strings.Join(courses, ", "), ck.key)
		c.Suggestions = []string{"select a different slot for one of the courses", "drop one of the overlapping courses"}
		return c
	}
	c.Type = models.ConflictProgramSemOverlap
	c.Severity = models.SeverityMedium
	scope := ck.program
	if scope == "" {
		scope = "the same program"
	}
	c.Description = fmt.Sprintf("%d courses of %s semester %d are scheduled on %s", len(courses), scope, ck.semester, ck.key)
	c.Suggestions = []string{"confirm the courses are parallel electives", "move one course to a free time slot"}
	return c
}

func resourceConflict(kind models.ConflictType, label string, rk resourceGroupKey, g *group) models.Conflict {
	return models.Conflict{
		Type:        kind,
		Severity:    models.SeverityHigh,
		Description: fmt.Sprintf("%s %s is booked by %d slots on %s", label, rk.id, len(g.slots), rk.key),
		SlotIDs:     sortedKeys(g.slots),
		CourseIDs:   sortedKeys(g.courses),
		ResourceID:  rk.id,
		DayOfWeek:   rk.key.Day,
		StartTime:   rk.key.Start,
		EndTime:     rk.key.End,
		Suggestions: []string{fmt.Sprintf("re-run auto allocation after clearing the %s on all but one slot", label)},
	}
}

// SortConflicts orders conflicts by time window, type, resource and slot ids.
func SortConflicts(conflicts []models.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		ka := NewTimeKey(a.DayOfWeek, a.StartTime, a.EndTime)
		kb := NewTimeKey(b.DayOfWeek, b.StartTime, b.EndTime)
		if ka != kb {
			return ka.Less(kb)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		if sa, sb := firstSlot(a), firstSlot(b); sa != sb {
			return sa < sb
		}
		return strings.Join(a.CourseIDs, ",") < strings.Join(b.CourseIDs, ",")
	})
}

func firstSlot(c models.Conflict) string {
	if c.SlotID != "" {
		return c.SlotID
	}
	if len(c.SlotIDs) > 0 {
		return c.SlotIDs[0]
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FilterConflicts keeps the conflicts of the given types.
func FilterConflicts(conflicts []models.Conflict, types ...models.ConflictType) []models.Conflict {
	want := make(map[models.ConflictType]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]models.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		if _, ok := want[c.Type]; ok {
			out = append(out, c)
		}
	}
	return out
}
