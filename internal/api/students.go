package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/distrischool/schoolctl/internal/model"
)

const studentsBasePath = "/api/v1/students"

// Page is the Spring-style pagination wrapper the directory services
// return from their listing endpoints.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// StudentsClient wraps the student management service.
type StudentsClient struct {
	client *Client
}

// NewStudentsClient creates a student service wrapper.
func NewStudentsClient(client *Client) *StudentsClient {
	return &StudentsClient{client: client}
}

// List fetches one page of students.
func (s *StudentsClient) List(ctx context.Context, page, size int) (*Page[model.Student], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result Page[model.Student]
	if err := s.client.Get(ctx, studentsBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search fetches one page of students matching the given filters.
func (s *StudentsClient) Search(ctx context.Context, params model.StudentSearch) (*Page[model.Student], error) {
	q := url.Values{}
	if params.Name != "" {
		q.Set("name", params.Name)
	}
	if params.Course != "" {
		q.Set("course", params.Course)
	}
	if params.Semester > 0 {
		q.Set("semester", strconv.Itoa(params.Semester))
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	q.Set("page", strconv.Itoa(params.Page))
	if params.Size > 0 {
		q.Set("size", strconv.Itoa(params.Size))
	}

	var result Page[model.Student]
	if err := s.client.Get(ctx, studentsBasePath+"/search?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a single student by id.
func (s *StudentsClient) Get(ctx context.Context, id int64) (*model.Student, error) {
	var result model.Student
	path := fmt.Sprintf("%s/%d", studentsBasePath, id)
	if err := s.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByRegistration fetches a single student by registration number.
func (s *StudentsClient) GetByRegistration(ctx context.Context, registrationNumber string) (*model.Student, error) {
	var result model.Student
	path := studentsBasePath + "/registration/" + url.PathEscape(registrationNumber)
	if err := s.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
