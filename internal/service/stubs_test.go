package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type memTimetables struct {
	items map[string]models.Timetable
	seq   int
}

func newMemTimetables(items ...models.Timetable) *memTimetables {
	m := &memTimetables{items: map[string]models.Timetable{}}
	for _, t := range items {
		m.items[t.ID] = t
	}
	return m
}

func (m *memTimetables) Create(_ context.Context, t *models.Timetable) error {
	m.seq++
	if t.ID == "" {
		t.ID = fmt.Sprintf("tt-%d", m.seq)
	}
	if t.Status == "" {
		t.Status = models.TimetableStatusDraft
	}
	m.items[t.ID] = *t
	return nil
}

func (m *memTimetables) FindByID(_ context.Context, id string) (*models.Timetable, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memTimetables) ListByProgramSemester(_ context.Context, program string, semester int) ([]models.Timetable, error) {
	var out []models.Timetable
	for _, t := range m.items {
		if t.Program == program && t.Semester == semester {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTimetables) UpdateSchedule(_ context.Context, id string, schedule models.ScheduleConfig) error {
	t, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Schedule = schedule
	m.items[id] = t
	return nil
}

func (m *memTimetables) UpdateStatus(_ context.Context, id string, status models.TimetableStatus) error {
	t, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Status = status
	m.items[id] = t
	return nil
}

func (m *memTimetables) UpdateConflicts(_ context.Context, id string, conflicts models.ConflictList, score float64) error {
	t, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Conflicts = conflicts
	t.OptimizationScore = score
	m.items[id] = t
	return nil
}

func (m *memTimetables) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

// memSlots keeps insertion order and enforces the room/faculty uniqueness of
// the schedule_slots indexes.
type memSlots struct {
	items     []models.ScheduleSlot
	seq       int
	updateErr map[string]error
	updates   int
}

func newMemSlots(items ...models.ScheduleSlot) *memSlots {
	return &memSlots{items: append([]models.ScheduleSlot(nil), items...), updateErr: map[string]error{}}
}

func (m *memSlots) clash(candidate models.ScheduleSlot, skipID string) bool {
	for _, s := range m.items {
		if s.ID == skipID || s.TimetableID != candidate.TimetableID {
			continue
		}
		if s.DayOfWeek != candidate.DayOfWeek || s.StartTime != candidate.StartTime || s.EndTime != candidate.EndTime {
			continue
		}
		if s.RoomID != nil && candidate.RoomID != nil && *s.RoomID == *candidate.RoomID {
			return true
		}
		if s.FacultyID != nil && candidate.FacultyID != nil && *s.FacultyID == *candidate.FacultyID {
			return true
		}
	}
	return false
}

func (m *memSlots) Create(_ context.Context, slot *models.ScheduleSlot) error {
	if m.clash(*slot, "") {
		return repository.ErrDuplicateSlot
	}
	m.seq++
	slot.ID = fmt.Sprintf("slot-%d", m.seq)
	slot.CreatedAt = time.Now().UTC()
	m.items = append(m.items, *slot)
	return nil
}

func (m *memSlots) ListByTimetable(_ context.Context, timetableID string) ([]models.ScheduleSlot, error) {
	out := []models.ScheduleSlot{}
	for _, s := range m.items {
		if s.TimetableID == timetableID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSlots) ListByFaculty(_ context.Context, facultyID string) ([]models.ScheduleSlot, error) {
	out := []models.ScheduleSlot{}
	for _, s := range m.items {
		if s.FacultyID != nil && *s.FacultyID == facultyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSlots) FindByID(_ context.Context, id string) (*models.ScheduleSlot, error) {
	for _, s := range m.items {
		if s.ID == id {
			slot := s
			return &slot, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memSlots) UpdateAssignment(_ context.Context, id string, patch models.SlotAssignment) error {
	if err := m.updateErr[id]; err != nil {
		return err
	}
	for i, s := range m.items {
		if s.ID != id {
			continue
		}
		s.FacultyID, s.RoomID = patch.FacultyID, patch.RoomID
		if m.clash(s, id) {
			return repository.ErrDuplicateSlot
		}
		m.items[i] = s
		m.updates++
		return nil
	}
	return sql.ErrNoRows
}

func (m *memSlots) DeleteByTimetable(_ context.Context, timetableID string) (int64, error) {
	kept := m.items[:0]
	var removed int64
	for _, s := range m.items {
		if s.TimetableID == timetableID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.items = kept
	return removed, nil
}

func (m *memSlots) count(timetableID string) int {
	n := 0
	for _, s := range m.items {
		if s.TimetableID == timetableID {
			n++
		}
	}
	return n
}

type memCourses struct {
	items []models.Course
}

func (m *memCourses) FindByID(_ context.Context, id string) (*models.Course, error) {
	for _, c := range m.items {
		if c.ID == id {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memCourses) FindByCode(_ context.Context, code string) (*models.Course, error) {
	for _, c := range m.items {
		if c.CourseCode == code {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memCourses) ListByIDs(_ context.Context, ids []string) ([]models.Course, error) {
	out := []models.Course{}
	for _, id := range ids {
		for _, c := range m.items {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memCourses) ListByProgramSemester(_ context.Context, program string, semester int) ([]models.Course, error) {
	out := []models.Course{}
	for _, c := range m.items {
		if c.Program == program && c.Semester == semester {
			out = append(out, c)
		}
	}
	return out, nil
}

type memFaculty struct {
	items []models.Faculty
}

func (m *memFaculty) FindByID(_ context.Context, id string) (*models.Faculty, error) {
	for _, f := range m.items {
		if f.ID == id {
			member := f
			return &member, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memFaculty) List(context.Context) ([]models.Faculty, error) {
	return append([]models.Faculty(nil), m.items...), nil
}

type memRooms struct {
	items []models.Room
}

func (m *memRooms) List(context.Context) ([]models.Room, error) {
	return append([]models.Room(nil), m.items...), nil
}

type memStudents struct {
	items   map[string]models.Student
	counts  map[string]int
	patches []models.StudentRegistrationPatch
}

func newMemStudents(items ...models.Student) *memStudents {
	m := &memStudents{items: map[string]models.Student{}, counts: map[string]int{}}
	for _, s := range items {
		m.items[s.ID] = s
	}
	return m
}

func (m *memStudents) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	s.EnrolledCourses = append([]string(nil), s.EnrolledCourses...)
	return &s, nil
}

func (m *memStudents) ListByProgramSemester(_ context.Context, program string, semester int) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.items {
		if s.Program == program && s.Semester == semester {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) EnrollmentCounts(_ context.Context, ids []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range ids {
		if n, ok := m.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *memStudents) UpdateRegistration(_ context.Context, id string, patch models.StudentRegistrationPatch) error {
	s, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.EnrolledCourses = patch.EnrolledCourses
	s.Preferences = patch.Preferences
	m.items[id] = s
	m.patches = append(m.patches, patch)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type invalidationRecorder struct {
	ids []string
}

func (r *invalidationRecorder) Invalidate(_ context.Context, id string) {
	r.ids = append(r.ids, id)
}

func strPtr(v string) *string { return &v }
