package optimizer

// TimeSlot is one grid interval offered to the engine.
type TimeSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  int    `json:"duration"`
}

type Course struct {
	ID               string `json:"id"`
	CourseCode       string `json:"course_code"`
	CourseName       string `json:"course_name"`
	Credits          int    `json:"credits"`
	CourseType       string `json:"course_type"`
	ExpectedStudents int    `json:"expected_students"`
	// Lab courses ask for back-to-back periods.
	RequiresConsecutiveSlots bool `json:"requires_consecutive_slots"`
}

type Faculty struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Expertise       []string `json:"expertise"`
	MaxHoursPerWeek int      `json:"max_hours_per_week"`
	CurrentWorkload int      `json:"current_workload"`
}

type Room struct {
	ID         string   `json:"id"`
	RoomNumber string   `json:"room_number"`
	RoomName   string   `json:"room_name"`
	Capacity   int      `json:"capacity"`
	RoomType   string   `json:"room_type"`
	Equipment  []string `json:"equipment"`
}

type Student struct {
	ID              string   `json:"id"`
	StudentID       string   `json:"student_id"`
	Name            string   `json:"name"`
	Program         string   `json:"program"`
	Semester        int      `json:"semester"`
	EnrolledCourses []string `json:"enrolled_courses"`
}

// Constraints mirrors the engine's tunables.
type Constraints struct {
	MaxHoursPerDay      int    `json:"max_hours_per_day"`
	MinBreakDuration    int    `json:"min_break_duration"`
	LunchBreakDuration  int    `json:"lunch_break_duration"`
	LunchBreakStart     string `json:"lunch_break_start"`
	ConsecutiveLabSlots bool   `json:"consecutive_lab_slots"`
	MaxConsecutiveHours int    `json:"max_consecutive_hours"`
}

// Request is the problem description.
type Request struct {
	Courses      []Course    `json:"courses"`
	Faculty      []Faculty   `json:"faculty"`
	Rooms        []Room      `json:"rooms"`
	Students     []Student   `json:"students"`
	TimeSlots    []TimeSlot  `json:"time_slots"`
	Constraints  Constraints `json:"constraints"`
	Program      string      `json:"program"`
	Semester     int         `json:"semester"`
	Batch        string      `json:"batch"`
	AcademicYear string      `json:"academic_year"`
}

// JobRequest wraps a Request with the solver choice.
type JobRequest struct {
	Request   Request `json:"request"`
	Algorithm string  `json:"algorithm"`
	JobName   string  `json:"job_name,omitempty"`
}

// Slot is one assignment proposed by the engine.
type Slot struct {
	CourseID   string   `json:"course_id"`
	FacultyID  string   `json:"faculty_id"`
	RoomID     string   `json:"room_id"`
	Day        string   `json:"day"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	Duration   int      `json:"duration"`
	StudentIDs []string `json:"student_ids"`
}

// Result is the synchronous response.
type Result struct {
	Success           bool                     `json:"success"`
	TimetableSlots    []Slot                   `json:"timetable_slots"`
	Conflicts         []map[string]interface{} `json:"conflicts"`
	OptimizationScore float64                  `json:"optimization_score"`
	Warnings          []string                 `json:"warnings"`
	AlgorithmUsed     string                   `json:"algorithm_used"`
}

// JobAccepted is the asynchronous acknowledgement.
type JobAccepted struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
