package model

// StudentStatus is the enrollment state of a student record.
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentInactive  StudentStatus = "INACTIVE"
	StudentGraduated StudentStatus = "GRADUATED"
	StudentSuspended StudentStatus = "SUSPENDED"
)

// Student is a record from the student management service. Date fields
// are kept as the service's wire strings ("2006-01-02") since the
// client only displays them.
type Student struct {
	ID                 int64         `json:"id"`
	RegistrationNumber string        `json:"registrationNumber"`
	FullName           string        `json:"fullName"`
	CPF                string        `json:"cpf,omitempty"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone,omitempty"`
	BirthDate          string        `json:"birthDate,omitempty"`
	Course             string        `json:"course"`
	Semester           int           `json:"semester"`
	EnrollmentDate     string        `json:"enrollmentDate,omitempty"`
	Status             StudentStatus `json:"status"`
	Notes              string        `json:"notes,omitempty"`
	CreatedAt          string        `json:"createdAt,omitempty"`
	UpdatedAt          string        `json:"updatedAt,omitempty"`
}

// StudentSearch holds the filter parameters accepted by the student
// search endpoint. Zero values are omitted from the query string.
type StudentSearch struct {
	Name     string
	Course   string
	Semester int
	Status   StudentStatus
	Page     int
	Size     int
}
