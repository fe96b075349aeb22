package model

// TeacherStatus is the employment state of a teacher record.
type TeacherStatus string

const (
	TeacherActive   TeacherStatus = "ACTIVE"
	TeacherInactive TeacherStatus = "INACTIVE"
	TeacherOnLeave  TeacherStatus = "ON_LEAVE"
)

// Teacher is a record from the teacher management service.
type Teacher struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	EmployeeID    string        `json:"employeeId"`
	Qualification string        `json:"qualification,omitempty"`
	Contact       string        `json:"contact,omitempty"`
	Status        TeacherStatus `json:"status,omitempty"`
	HireDate      string        `json:"hireDate,omitempty"`
	Subjects      []string      `json:"subjects,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}
