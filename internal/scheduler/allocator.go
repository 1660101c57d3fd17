package scheduler

import (
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Occupancy tracks which rooms and faculty members are taken per time key,
// plus how many slots each faculty member already carries.
type Occupancy struct {
	rooms   map[TimeKey]map[string]struct{}
	faculty map[TimeKey]map[string]struct{}
	load    map[string]int
}

func NewOccupancy() *Occupancy {
	return &Occupancy{
		rooms:   map[TimeKey]map[string]struct{}{},
		faculty: map[TimeKey]map[string]struct{}{},
		load:    map[string]int{},
	}
}

func (o *Occupancy) reserveRoom(key TimeKey, id string) {
	if o.rooms[key] == nil {
		o.rooms[key] = map[string]struct{}{}
	}
	o.rooms[key][id] = struct{}{}
}

func (o *Occupancy) reserveFaculty(key TimeKey, id string) {
	if o.faculty[key] == nil {
		o.faculty[key] = map[string]struct{}{}
	}
	o.faculty[key][id] = struct{}{}
	o.load[id]++
}

func (o *Occupancy) releaseRoom(key TimeKey, id string) {
	delete(o.rooms[key], id)
}

func (o *Occupancy) releaseFaculty(key TimeKey, id string) {
	if _, ok := o.faculty[key][id]; !ok {
		return
	}
	delete(o.faculty[key], id)
	if o.load[id] > 0 {
		o.load[id]--
	}
}

// RoomBusy reports whether the room is taken at key.
func (o *Occupancy) RoomBusy(key TimeKey, id string) bool {
	_, ok := o.rooms[key][id]
	return ok
}

// FacultyBusy reports whether the faculty member is taken at key.
func (o *Occupancy) FacultyBusy(key TimeKey, id string) bool {
	_, ok := o.faculty[key][id]
	return ok
}

// Load returns the number of slots reserved for a faculty member.
func (o *Occupancy) Load(id string) int {
	return o.load[id]
}

// RequiredCapacity returns the seats a class needs: enrolment plus buffer, rounded up.
func RequiredCapacity(enrolled int, buffer float64) int {
	if enrolled <= 0 {
		return 0
	}
	if buffer < 0 {
		buffer = 0
	}
	extra := math.Ceil(float64(enrolled)*buffer - 1e-9)
	return enrolled + int(extra)
}

// Allocator assigns rooms and faculty greedily, one slot at a time. Each
// assignment is recorded before the next slot is considered, so the result
// depends on the order slots are fed in.
type Allocator struct {
	rooms   []models.Room
	faculty []models.Faculty
	buffer  float64
	occ     *Occupancy
}

// NewAllocator builds an allocator over the candidate rooms and faculty. Their
// order is the tie-break order.
func NewAllocator(rooms []models.Room, faculty []models.Faculty, capacityBuffer float64) *Allocator {
	return &Allocator{rooms: rooms, faculty: faculty, buffer: capacityBuffer, occ: NewOccupancy()}
}

// Occupancy exposes the current reservation state.
func (a *Allocator) Occupancy() *Occupancy {
	return a.occ
}

// Seed records the assignments of every existing slot.
func (a *Allocator) Seed(slots []models.ScheduleSlot) {
	for _, slot := range slots {
		key := KeyOf(slot)
		if slot.RoomID != nil {
			a.occ.reserveRoom(key, *slot.RoomID)
		}
		if slot.FacultyID != nil {
			a.occ.reserveFaculty(key, *slot.FacultyID)
		}
	}
}

// Release drops the reservations an outcome made, for a write that did not
// persist.
func (a *Allocator) Release(slot models.ScheduleSlot, out Outcome) {
	key := KeyOf(slot)
	if out.RoomAssigned && out.Assignment.RoomID != nil {
		a.occ.releaseRoom(key, *out.Assignment.RoomID)
	}
	if out.FacultyAssigned && out.Assignment.FacultyID != nil {
		a.occ.releaseFaculty(key, *out.Assignment.FacultyID)
	}
}

// Outcome describes what Allocate decided for one slot.
type Outcome struct {
	Assignment      models.SlotAssignment
	RoomAssigned    bool
	FacultyAssigned bool
	Conflicts       []models.Conflict
}

// Changed reports whether anything new was assigned.
func (o Outcome) Changed() bool {
	return o.RoomAssigned || o.FacultyAssigned
}

// Allocate fills the missing room and/or faculty of slot. enrolled is the
// number of students registered for the course.
func (a *Allocator) Allocate(slot models.ScheduleSlot, course models.Course, enrolled int) Outcome {
	key := KeyOf(slot)
	out := Outcome{Assignment: models.SlotAssignment{FacultyID: slot.FacultyID, RoomID: slot.RoomID}}

	if slot.NeedsRoom() {
		required := RequiredCapacity(enrolled, a.buffer)
		if room, ok := a.pickRoom(key, slot.IsLab(), required); ok {
			id := room.ID
			a.occ.reserveRoom(key, id)
			out.Assignment.RoomID = &id
			out.RoomAssigned = true
		} else {
			out.Conflicts = append(out.Conflicts, unavailable(models.ConflictRoomUnavailable, slot, key,
				fmt.Sprintf("no free %s room with capacity >= %d for %s on %s", roomKind(slot.IsLab()), required, courseLabel(course), key),
				"add or free a suitable room at this time", "move the slot to a less busy time"))
		}
	}

	if slot.NeedsFaculty() {
		if member, ok := a.pickFaculty(key, course); ok {
			id := member.ID
			a.occ.reserveFaculty(key, id)
			out.Assignment.FacultyID = &id
			out.FacultyAssigned = true
		} else {
			out.Conflicts = append(out.Conflicts, unavailable(models.ConflictFacultyUnavailable, slot, key,
				fmt.Sprintf("no available faculty member for %s on %s", courseLabel(course), key),
				"extend faculty availability for this time", "assign a faculty member manually"))
		}
	}

	return out
}

func (a *Allocator) pickRoom(key TimeKey, lab bool, required int) (models.Room, bool) {
	best := -1
	bestGap := 0
	for i, room := range a.rooms {
		if !room.IsAvailable || room.Capacity < required || room.IsLab() != lab {
			continue
		}
		if a.occ.RoomBusy(key, room.ID) {
			continue
		}
		gap := room.Capacity - required
		if best < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		return models.Room{}, false
	}
	return a.rooms[best], true
}

// pickFaculty prefers members assigned to the course, then members whose
// expertise matches it, then anyone eligible.
func (a *Allocator) pickFaculty(key TimeKey, course models.Course) (models.Faculty, bool) {
	var expert, fallback *models.Faculty
	for i := range a.faculty {
		member := &a.faculty[i]
		if !a.eligible(key, *member) {
			continue
		}
		if member.Teaches(course.ID) {
			return *member, true
		}
		if expert == nil && ExpertiseMatches(member.Expertise, course) {
			expert = member
		}
		if fallback == nil {
			fallback = member
		}
	}
	if expert != nil {
		return *expert, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return models.Faculty{}, false
}

func (a *Allocator) eligible(key TimeKey, member models.Faculty) bool {
	if !member.IsActive || a.occ.FacultyBusy(key, member.ID) {
		return false
	}
	if !member.Availability.Allows(key.Day, key.Start) {
		return false
	}
	return member.MaxWorkload <= 0 || a.occ.Load(member.ID) < member.MaxWorkload
}

// ExpertiseMatches reports whether any expertise term and the course name or
// code contain one another, ignoring case.
func ExpertiseMatches(expertise []string, course models.Course) bool {
	targets := []string{strings.ToLower(course.CourseName), strings.ToLower(course.CourseCode)}
	for _, raw := range expertise {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		for _, target := range targets {
			if target == "" {
				continue
			}
			if strings.Contains(target, term) || strings.Contains(term, target) {
				return true
			}
		}
	}
	return false
}

// Score rates a timetable from 0 to 100: the share of fully assigned slots
// minus five points per reported conflict.
func Score(total, assigned, conflicts int) float64 {
	if total <= 0 {
		return 0
	}
	score := float64(assigned)/float64(total)*100 - float64(conflicts)*5
	return math.Max(0, math.Min(100, score))
}

func unavailable(kind models.ConflictType, slot models.ScheduleSlot, key TimeKey, description string, suggestions ...string) models.Conflict {
	return models.Conflict{
		Type:        kind,
		Description: description,
		Severity:    models.SeverityHigh,
		SlotID:      slot.ID,
		SlotIDs:     []string{slot.ID},
		CourseIDs:   []string{slot.CourseID},
		DayOfWeek:   key.Day,
		StartTime:   key.Start,
		EndTime:     key.End,
		Suggestions: suggestions,
	}
}

func roomKind(lab bool) string {
	if lab {
		return "lab"
	}
	return "lecture"
}

func courseLabel(c models.Course) string {
	if c.CourseCode != "" {
		return c.CourseCode
	}
	return c.ID
}
