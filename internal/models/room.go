package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Room is a bookable teaching space.
type Room struct {
	ID          string         `db:"id" json:"id"`
	RoomNumber  string         `db:"room_number" json:"room_number"`
	RoomType    string         `db:"room_type" json:"room_type"`
	Capacity    int            `db:"capacity" json:"capacity"`
	Equipment   pq.StringArray `db:"equipment" json:"equipment"`
	IsAvailable bool           `db:"is_available" json:"is_available"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// IsLab reports whether the room type designates a laboratory.
func (r Room) IsLab() bool {
	return strings.Contains(strings.ToLower(r.RoomType), "lab")
}
