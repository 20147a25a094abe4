package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"devsync/internal/common"
)

// ErrorCollector is notified about every error response, keyed by HTTP status.
type ErrorCollector interface {
	IncError(status int)
}

var errorCollector ErrorCollector

func SetErrorCollector(collector ErrorCollector) {
	errorCollector = collector
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal error", Code: string(common.CodeInternal)}
	var appErr *common.Error
	if errors.As(err, &appErr) {
		status = statusFor(appErr.Code)
		body = errorBody{Error: appErr.Message, Code: string(appErr.Code), Fields: appErr.Fields}
	}
	if errorCollector != nil {
		errorCollector.IncError(status)
	}
	JSON(w, status, body)
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
