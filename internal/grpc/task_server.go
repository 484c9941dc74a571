package grpcserver

import (
	"context"

	"google.golang.org/protobuf/types/dynamicpb"

	"taskapi/internal/auth"
	"taskapi/internal/rpcpb"
	"taskapi/internal/service"
)

func (s *Server) GetTasks(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	page, err := s.Svc.ListTasks(ctx, rpcpb.GetInt64(req, "user_id"), rpcpb.GetString(req, "status"))
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodGetTasks)
	for i := range page.Tasks {
		putTask(rpcpb.Append(out, "tasks"), &page.Tasks[i])
	}
	rpcpb.SetInt32(out, "page", int32(page.Page))
	rpcpb.SetInt32(out, "limit", int32(page.Limit))
	rpcpb.SetInt32(out, "total", int32(page.Total))
	rpcpb.SetStatus(out, "status", statusOK, "Tasks fetched successfully")
	return out, nil
}

func (s *Server) CreateTask(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	t, err := s.Svc.CreateTask(ctx, service.NewTask{
		Title:       rpcpb.GetString(req, "title"),
		Description: rpcpb.GetOptionalString(req, "description"),
		Status:      rpcpb.GetString(req, "status"),
		UserID:      rpcpb.GetInt64(req, "user_id"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodCreateTask)
	rpcpb.SetBool(out, "success", true)
	rpcpb.SetString(out, "message", "Task created successfully")
	rpcpb.SetInt64(out, "task_id", t.ID)
	rpcpb.SetString(out, "title", t.Title)
	rpcpb.SetOptionalString(out, "description", t.Description)
	rpcpb.SetString(out, "status", string(t.Status))
	rpcpb.SetStatus(out, "status_info", statusCreated, "Task created successfully")
	return out, nil
}

// UpdateTask only touches tasks owned by the caller.
func (s *Server) UpdateTask(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.Svc.UpdateTask(ctx, rpcpb.GetInt64(req, "task_id"), service.TaskUpdate{
		Title:       rpcpb.GetOptionalString(req, "title"),
		Description: rpcpb.GetOptionalString(req, "description"),
		Status:      rpcpb.GetOptionalString(req, "status"),
	}, p.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodUpdateTask)
	putTask(rpcpb.Mutable(out, "task"), t)
	rpcpb.SetStatus(out, "status", statusOK, "Task updated successfully")
	return out, nil
}

func (s *Server) DeleteTask(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Svc.DeleteTask(ctx, rpcpb.GetInt64(req, "task_id"), p.UserID); err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodDeleteTask)
	rpcpb.SetStatus(out, "status", statusOK, "Task deleted successfully")
	return out, nil
}
