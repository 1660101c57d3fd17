package models

// SlotKind classifies a generated grid interval.
type SlotKind string

const (
	SlotKindTheory SlotKind = "theory"
	SlotKindLab    SlotKind = "lab"
	SlotKindBreak  SlotKind = "break"
)

// TimeSlot is a computed grid interval. It is never persisted on its own.
type TimeSlot struct {
	DayOfWeek       Weekday  `json:"day_of_week"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Kind            SlotKind `json:"kind"`
	IsLunch         bool     `json:"is_lunch"`
}

// DayGrid holds the teaching periods of one working day plus its lunch window.
type DayGrid struct {
	DayOfWeek Weekday    `json:"day_of_week"`
	Slots     []TimeSlot `json:"slots"`
	Lunch     *TimeSlot  `json:"lunch,omitempty"`
}
