package common

import (
	"encoding/json"
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. message is what the
// client sees; err is logged for 5xx and never echoed.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	if code >= http.StatusInternalServerError && err != nil {
		logging.Error("request failed", "status", code, "message", message, "error", err)
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Error:        message,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondValidation sends a 400 with per-field messages in data.
func RespondValidation(w http.ResponseWriter, initTime time.Time, fields map[string]string) {
	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Error:        constants.MsgMissingFields,
		ResponseTime: GetResponseTime(initTime),
		Data:         fields,
	}
	writeJSON(w, http.StatusBadRequest, response)
}

func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
