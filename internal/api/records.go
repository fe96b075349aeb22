package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/distrischool/schoolctl/internal/model"
)

const (
	gradesBasePath     = "/api/v1/grades"
	attendanceBasePath = "/api/v1/attendance"
)

// RecordsClient wraps the grade and attendance services.
type RecordsClient struct {
	client *Client
}

// NewRecordsClient creates a grade/attendance wrapper.
func NewRecordsClient(client *Client) *RecordsClient {
	return &RecordsClient{client: client}
}

// ListGradesByStudent fetches the grades posted for one student.
func (r *RecordsClient) ListGradesByStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	q := url.Values{}
	q.Set("studentId", strconv.FormatInt(studentID, 10))

	var result []model.Grade
	if err := r.client.Get(ctx, gradesBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAttendance fetches the attendance records for a schedule slot on
// a given date ("2006-01-02").
func (r *RecordsClient) ListAttendance(ctx context.Context, scheduleID int64, date string) ([]model.Attendance, error) {
	q := url.Values{}
	q.Set("scheduleId", strconv.FormatInt(scheduleID, 10))
	if date != "" {
		q.Set("date", date)
	}

	var result []model.Attendance
	if err := r.client.Get(ctx, attendanceBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}
