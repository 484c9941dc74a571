package service

import (
	"context"
	"strings"

	"taskapi/models"
	"taskapi/repository"
)

// Listing envelope values. The listing is not sliced; the fields are
// reported as clients of the first version of the API expect them.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// NewTask is the input of CreateTask. Empty Status means pending.
type NewTask struct {
	Title       string
	Description *string
	Status      string
	UserID      int64
}

// TaskUpdate carries optional fields. A nil or empty Title is "not supplied";
// an empty Description is an explicit value that clears the text. The
// asymmetry is kept for compatibility with existing clients.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskPage is the ListTasks result.
type TaskPage struct {
	Tasks []models.Task
	Page  int
	Limit int
	Total int
}

// CreateTask checks the owner id before the other fields. An empty
// Description is stored as null.
func (s *Service) CreateTask(ctx context.Context, in NewTask) (*models.Task, error) {
	if in.UserID <= 0 {
		return nil, invalid(msgOwnerRequired)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid(msgTitleRequired)
	}
	status := models.TaskStatusPending
	if in.Status != "" {
		status = models.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, invalid(msgInvalidStatus)
		}
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, s.storeErr(ctx, "create task", err, msgUserNotFound)
	}
	desc := in.Description
	if desc != nil && *desc == "" {
		desc = nil
	}
	t, err := s.tasks.Create(ctx, &models.Task{
		Title:       in.Title,
		Description: desc,
		Status:      status,
		UserID:      in.UserID,
	})
	if err != nil {
		return nil, s.storeErr(ctx, "create task", err, msgUserNotFound)
	}
	return t, nil
}

// ListTasks filters by owner when userID > 0 and by status when it names a
// known status; any other status value is ignored rather than rejected.
func (s *Service) ListTasks(ctx context.Context, userID int64, status string) (*TaskPage, error) {
	if userID < 0 {
		return nil, invalid(msgBadUserIDFormat)
	}
	var f repository.TaskFilter
	if userID > 0 {
		f.UserID = &userID
	}
	if st := models.TaskStatus(status); st.Valid() {
		f.Status = &st
	}
	tasks, err := s.tasks.List(ctx, f)
	if err != nil {
		return nil, s.internal(ctx, "list tasks", err)
	}
	return &TaskPage{Tasks: tasks, Page: DefaultPage, Limit: DefaultLimit, Total: len(tasks)}, nil
}

// UpdateTask changes the supplied fields of task id. When ownerID is
// positive, tasks of other users are reported as not found.
func (s *Service) UpdateTask(ctx context.Context, id int64, in TaskUpdate, ownerID int64) (*models.Task, error) {
	if id <= 0 {
		return nil, invalid(msgInvalidTaskID)
	}
	var p repository.TaskPatch
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		p.Title = in.Title
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Status != nil && *in.Status != "" {
		st := models.TaskStatus(*in.Status)
		if !st.Valid() {
			return nil, invalid(msgInvalidStatus)
		}
		p.Status = &st
	}
	if err := s.checkOwner(ctx, "update task", id, ownerID); err != nil {
		return nil, err
	}
	t, err := s.tasks.Update(ctx, id, p)
	if err != nil {
		return nil, s.storeErr(ctx, "update task", err, msgTaskNotFound)
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64, ownerID int64) error {
	if id <= 0 {
		return invalid(msgInvalidTaskID)
	}
	if err := s.checkOwner(ctx, "delete task", id, ownerID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.storeErr(ctx, "delete task", err, msgTaskNotFound)
	}
	return nil
}

func (s *Service) checkOwner(ctx context.Context, op string, id, ownerID int64) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return s.storeErr(ctx, op, err, msgTaskNotFound)
	}
	if ownerID > 0 && t.UserID != ownerID {
		return notFound(msgTaskNotFound)
	}
	return nil
}
