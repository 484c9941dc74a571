package rest

import (
	"errors"
	"net/http"

	"taskapi/internal/auth"
	"taskapi/internal/logging"
	"taskapi/internal/service"
)

type handler struct {
	svc *service.Service
	log logging.Logger
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	token, err := h.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// logout revokes the bearer token. Without one it answers 400 like the gRPC
// Logout does; any other header goes to the service, which rejects it.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, err := auth.BearerToken(header)
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		token = ""
	case err != nil:
		token = header
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var in passwordUpdate
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), pathID(r), in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), pathID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createTask assigns the task to the caller.
func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	p, _ := auth.FromContext(r.Context())
	nt := service.NewTask{Description: in.Description, UserID: p.UserID}
	if in.Title != nil {
		nt.Title = *in.Title
	}
	if in.Status != nil {
		nt.Status = *in.Status
	}
	t, err := h.svc.CreateTask(r.Context(), nt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCreatedTaskResponse(t))
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, err := h.svc.ListTasks(r.Context(), p.UserID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPageResponse(page))
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	p, _ := auth.FromContext(r.Context())
	t, err := h.svc.UpdateTask(r.Context(), pathID(r), service.TaskUpdate{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}, p.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if err := h.svc.DeleteTask(r.Context(), pathID(r), p.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
