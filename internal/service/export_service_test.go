package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubStudentScheduler struct {
	schedule *dto.StudentScheduleResponse
}

func (s stubStudentScheduler) StudentSchedule(context.Context, string) (*dto.StudentScheduleResponse, error) {
	return s.schedule, nil
}

func newExportFixture(schedule *dto.StudentScheduleResponse) *ExportService {
	assigned := pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory)
	assigned.RoomID, assigned.FacultyID = strPtr("r-1"), strPtr("f-1")
	assigned.SectionIDs = []string{"A", "B"}
	pending := pendingSlot("slot-2", "c-net", models.Tuesday, "10:00", "12:00", models.SlotTypeLab)

	return NewExportService(
		newMemTimetables(draftTimetable()),
		newMemSlots(pending, assigned),
		allocationCourses(),
		&memFaculty{items: []models.Faculty{{ID: "f-1", FirstName: "Ada", LastName: "Lovelace"}}},
		&memRooms{items: []models.Room{{ID: "r-1", RoomNumber: "A-101"}}},
		stubStudentScheduler{schedule: schedule},
		ExportConfig{CalendarWeeks: 4, Timezone: "UTC"},
		nil,
	)
}

func TestExportTimetableCSV(t *testing.T) {
	svc := newExportFixture(nil)

	file, err := svc.ExportTimetable(context.Background(), "tt-1", "")
	require.NoError(t, err)
	assert.Equal(t, "CS_Sem_3.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Monday,09:00,10:00,CS101,Algorithms,theory,Ada Lovelace,A-101,\"A, B\"")
	assert.Contains(t, lines[2], "unassigned")
}

func TestExportTimetableBinaryFormats(t *testing.T) {
	svc := newExportFixture(nil)

	pdf, err := svc.ExportTimetable(context.Background(), "tt-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))

	xlsx, err := svc.ExportTimetable(context.Background(), "tt-1", ExportFormatXLSX)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(xlsx.Body), "PK"))
	assert.Equal(t, "CS_Sem_3.xlsx", xlsx.Filename)

	_, err = svc.ExportTimetable(context.Background(), "tt-1", "docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentCalendar(t *testing.T) {
	slot := pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory)
	slot.RoomID = strPtr("r-1")
	svc := newExportFixture(&dto.StudentScheduleResponse{
		StudentID: "st-1",
		Entries:   []dto.StudentScheduleEntry{{CourseID: "c-alg", CourseCode: "CS101", CourseName: "Algorithms", Slot: &slot}},
	})
	svc.now = func() time.Time { return time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC) }

	file, err := svc.StudentCalendar(context.Background(), "st-1", dto.CalendarQuery{})
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", file.ContentType)

	body := string(file.Body)
	assert.Contains(t, body, "SUMMARY:CS101 Algorithms")
	assert.Contains(t, body, "LOCATION:A-101")
	assert.Contains(t, body, "20260907T090000")
	assert.Contains(t, body, "COUNT=4")

	_, err = svc.StudentCalendar(context.Background(), "st-1", dto.CalendarQuery{From: "07/09/2026"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
