package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/distrischool/schoolctl/internal/model"
)

const teachersBasePath = "/api/v1/teachers"

// TeachersClient wraps the teacher management service.
type TeachersClient struct {
	client *Client
}

// NewTeachersClient creates a teacher service wrapper.
func NewTeachersClient(client *Client) *TeachersClient {
	return &TeachersClient{client: client}
}

// List fetches one page of teachers.
func (t *TeachersClient) List(ctx context.Context, page, size int) (*Page[model.Teacher], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result Page[model.Teacher]
	if err := t.client.Get(ctx, teachersBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a single teacher by id.
func (t *TeachersClient) Get(ctx context.Context, id int64) (*model.Teacher, error) {
	var result model.Teacher
	path := fmt.Sprintf("%s/%d", teachersBasePath, id)
	if err := t.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
