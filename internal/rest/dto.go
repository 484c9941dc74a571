package rest

import (
	"strconv"

	"taskapi/internal/service"
	"taskapi/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordUpdate struct {
	Password string `json:"password"`
}

type taskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type taskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	UserID      int64   `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// createdTaskResponse reports taskId as a decimal string; existing clients
// depend on it.
type createdTaskResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	TaskID      string  `json:"taskId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

type taskPageResponse struct {
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
	Tasks []taskResponse `json:"tasks"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: models.FormatWireTime(u.CreatedAt),
		UpdatedAt: models.FormatWireTime(u.UpdatedAt),
	}
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.UserID,
		CreatedAt:   models.FormatWireTime(t.CreatedAt),
		UpdatedAt:   models.FormatWireTime(t.UpdatedAt),
	}
}

func toCreatedTaskResponse(t *models.Task) createdTaskResponse {
	return createdTaskResponse{
		Success:     true,
		Message:     "Task created successfully",
		TaskID:      strconv.FormatInt(t.ID, 10),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
	}
}

func toTaskPageResponse(p *service.TaskPage) taskPageResponse {
	out := taskPageResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, Tasks: make([]taskResponse, 0, len(p.Tasks))}
	for i := range p.Tasks {
		out.Tasks = append(out.Tasks, toTaskResponse(&p.Tasks[i]))
	}
	return out
}
