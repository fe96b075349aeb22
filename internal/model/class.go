package model

// Class is a class group from the class management service.
type Class struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	AcademicYear    string  `json:"academicYear"`
	Period          string  `json:"period"`
	Capacity        int     `json:"capacity"`
	CurrentStudents int     `json:"currentStudents,omitempty"`
	ShiftID         int64   `json:"shiftId"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Room            string  `json:"room"`
	Active          bool    `json:"active"`
	SubjectID       int64   `json:"subjectId,omitempty"`
	SubjectName     string  `json:"subjectName,omitempty"`
	StudentIDs      []int64 `json:"studentIds,omitempty"`
	TeacherIDs      []int64 `json:"teacherIds,omitempty"`
}

// Subject is a course subject from the academic service.
type Subject struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	WorkloadHours    int    `json:"workloadHours"`
	Description      string `json:"description,omitempty"`
	AcademicCenterID int64  `json:"academicCenterId,omitempty"`
	Active           bool   `json:"active"`
}
