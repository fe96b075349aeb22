package model

// Schedule is a recurring class slot from the schedule service.
type Schedule struct {
	ID          int64  `json:"id"`
	ClassID     int64  `json:"classId,omitempty"`
	ClassName   string `json:"className,omitempty"`
	SubjectID   int64  `json:"subjectId,omitempty"`
	SubjectName string `json:"subjectName,omitempty"`
	ShiftID     int64  `json:"shiftId,omitempty"`
	ShiftName   string `json:"shiftName,omitempty"`
	DayOfWeek   string `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Room        string `json:"room"`
	TeacherID   int64  `json:"teacherId"`
	Active      bool   `json:"active"`
}
