package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskapi/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

var httpStatus = map[service.Code]int{
	service.CodeInvalidArgument: http.StatusBadRequest,
	service.CodeUnauthenticated: http.StatusUnauthorized,
	service.CodeNotFound:        http.StatusNotFound,
	service.CodeAlreadyExists:   http.StatusConflict,
	service.CodeInternal:        http.StatusInternalServerError,
}

const msgBadBody = "Invalid request body"

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Code: status, Error: http.StatusText(status), Message: message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, ok := httpStatus[service.CodeOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeError(w, status, service.MessageOf(err))
}

// decode reads a single JSON object, rejecting unknown fields. An empty body
// decodes as the zero value.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses {id}. Malformed values yield 0, which the service rejects
// with the operation's own message.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
