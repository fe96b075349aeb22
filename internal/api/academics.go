package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/distrischool/schoolctl/internal/model"
)

const (
	classesBasePath   = "/api/v1/classes"
	subjectsBasePath  = "/api/v1/subjects"
	schedulesBasePath = "/api/v1/schedules"
)

// AcademicsClient wraps the class, subject and schedule services.
type AcademicsClient struct {
	classes   *Client
	schedules *Client
}

// NewAcademicsClient creates an academics wrapper. classes serves the
// class and subject endpoints, schedules the schedule endpoints; both
// may be the same gateway client.
func NewAcademicsClient(classes, schedules *Client) *AcademicsClient {
	return &AcademicsClient{classes: classes, schedules: schedules}
}

// ListClasses fetches one page of class groups.
func (a *AcademicsClient) ListClasses(ctx context.Context, page, size int) (*Page[model.Class], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result Page[model.Class]
	if err := a.classes.Get(ctx, classesBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetClass fetches a single class group by id.
func (a *AcademicsClient) GetClass(ctx context.Context, id int64) (*model.Class, error) {
	var result model.Class
	if err := a.classes.Get(ctx, fmt.Sprintf("%s/%d", classesBasePath, id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSubjects fetches one page of subjects.
func (a *AcademicsClient) ListSubjects(ctx context.Context, page, size int) (*Page[model.Subject], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result Page[model.Subject]
	if err := a.classes.Get(ctx, subjectsBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSchedules fetches the schedule slots for a class group.
func (a *AcademicsClient) ListSchedules(ctx context.Context, classID int64) ([]model.Schedule, error) {
	q := url.Values{}
	q.Set("classId", strconv.FormatInt(classID, 10))

	var result []model.Schedule
	if err := a.schedules.Get(ctx, schedulesBasePath+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}
