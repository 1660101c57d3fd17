// Package export renders timetables into downloadable documents.
package export

import "strings"

// SlotRow is one timetable line as it appears in every tabular format.
type SlotRow struct {
	Day        string `csv:"day"`
	StartTime  string `csv:"start_time"`
	EndTime    string `csv:"end_time"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	SlotType   string `csv:"slot_type"`
	Faculty    string `csv:"faculty"`
	Room       string `csv:"room"`
	Sections   string `csv:"sections"`
}

// Sheet is a titled set of rows.
type Sheet struct {
	Title string
	Rows  []SlotRow
}

var slotHeaders = []string{"Day", "Start", "End", "Course", "Name", "Type", "Faculty", "Room", "Sections"}

func (r SlotRow) values() []string {
	return []string{r.Day, r.StartTime, r.EndTime, r.CourseCode, r.CourseName, r.SlotType, r.Faculty, r.Room, r.Sections}
}

// SafeFilename turns a title into something usable in Content-Disposition.
func SafeFilename(title, ext string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '/', r == '.':
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "timetable"
	}
	return name + "." + ext
}
