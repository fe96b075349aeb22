package model

// GradeStatus is the review state of a posted grade.
type GradeStatus string

const (
	GradeRegistered GradeStatus = "REGISTERED"
	GradePending    GradeStatus = "PENDING"
	GradeConfirmed  GradeStatus = "CONFIRMED"
	GradeDisputed   GradeStatus = "DISPUTED"
	GradeCancelled  GradeStatus = "CANCELLED"
)

// Grade is a posted grade from the grade service. GradeDate uses the
// service's "2006-01-02" wire format.
type Grade struct {
	ID               int64       `json:"id"`
	StudentID        int64       `json:"studentId"`
	TeacherID        int64       `json:"teacherId"`
	ClassID          int64       `json:"classId"`
	EvaluationID     int64       `json:"evaluationId"`
	GradeValue       float64     `json:"gradeValue"`
	GradeDate        string      `json:"gradeDate"`
	Notes            string      `json:"notes,omitempty"`
	Status           GradeStatus `json:"status"`
	IsAutomatic      bool        `json:"isAutomatic"`
	AcademicYear     int         `json:"academicYear"`
	AcademicSemester int         `json:"academicSemester"`
}

// Attendance is a single presence record from the attendance service.
type Attendance struct {
	ID         int64  `json:"id"`
	ScheduleID int64  `json:"scheduleId"`
	StudentID  int64  `json:"studentId"`
	Date       string `json:"date"`
	Present    bool   `json:"present"`
	Notes      string `json:"notes,omitempty"`
}
