package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func sampleEntries() []Entry {
	return []Entry{
		{SlotID: "s1", CourseID: "math", RoomID: "r1", FacultyID: "f1", Program: "CS", Semester: 3, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
		{SlotID: "s2", CourseID: "physics", RoomID: "r1", FacultyID: "f2", Program: "CS", Semester: 3, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
		{SlotID: "s3", CourseID: "chem", RoomID: "r2", FacultyID: "f2", Program: "EE", Semester: 3, DayOfWeek: models.Monday, StartTime: "9:00", EndTime: "10:00"},
		{SlotID: "s4", CourseID: "math", RoomID: "r3", FacultyID: "f3", Program: "CS", Semester: 3, DayOfWeek: models.Tuesday, StartTime: "09:00", EndTime: "10:00"},
		{SlotID: "s5", CourseID: "bio", DayOfWeek: models.Tuesday, Program: "CS", Semester: 3, StartTime: "10:00", EndTime: "11:00"},
	}
}

func types(conflicts []models.Conflict) []models.ConflictType {
	out := make([]models.ConflictType, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.Type)
	}
	return out
}

func TestDetectProgramLevel(t *testing.T) {
	conflicts := Detect(sampleEntries(), LevelProgram)

	require.Len(t, conflicts, 3)
	assert.Equal(t, []models.ConflictType{
		models.ConflictFacultyDoubleBooked,
		models.ConflictProgramSemOverlap,
		models.ConflictRoomDoubleBooked,
	}, types(conflicts))

	overlap := conflicts[1]
	assert.Equal(t, []string{"math", "physics"}, overlap.CourseIDs)
	assert.Equal(t, []string{"s1", "s2"}, overlap.SlotIDs)
	assert.Equal(t, models.SeverityMedium, overlap.Severity)
	assert.Equal(t, "09:00", overlap.StartTime)

	faculty := conflicts[0]
	assert.Equal(t, "f2", faculty.ResourceID)
	assert.Equal(t, []string{"s2", "s3"}, faculty.SlotIDs)

	room := conflicts[2]
	assert.Equal(t, "r1", room.ResourceID)
	assert.Equal(t, models.SeverityHigh, room.Severity)
}

func TestDetectStudentLevelIgnoresProgram(t *testing.T) {
	conflicts := FilterConflicts(Detect(sampleEntries(), LevelStudent), models.ConflictStudentTime)

	require.Len(t, conflicts, 1)
	assert.Equal(t, []string{"chem", "math", "physics"}, conflicts[0].CourseIDs)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)
	assert.NotEmpty(t, conflicts[0].Suggestions)
}

func TestDetectSameCourseSectionsAreNotCourseConflicts(t *testing.T) {
	entries := []Entry{
		{SlotID: "a", CourseID: "math", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
		{SlotID: "b", CourseID: "math", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}
	assert.Empty(t, Detect(entries, LevelStudent))
}

func TestDetectIsOrderIndependent(t *testing.T) {
	base := sampleEntries()
	expected := Detect(base, LevelProgram)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Entry(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, expected, Detect(shuffled, LevelProgram))
	}
}

func TestDetectDoesNotMutateInput(t *testing.T) {
	entries := sampleEntries()
	snapshot := append([]Entry(nil), entries...)
	_ = Detect(entries, LevelProgram)
	assert.Equal(t, snapshot, entries)
}

func TestEntryFromSlot(t *testing.T) {
	room := "r1"
	slot := models.ScheduleSlot{ID: "s", CourseID: "c", RoomID: &room, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"}
	e := EntryFromSlot(slot, &models.Course{Program: "CS", Semester: 2})
	assert.Equal(t, "r1", e.RoomID)
	assert.Empty(t, e.FacultyID)
	assert.Equal(t, "CS", e.Program)
	assert.Equal(t, 2, e.Semester)
}
