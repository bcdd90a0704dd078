package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/services"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body and runs struct validation. On failure the
// response has been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, initTime time.Time, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			common.RespondError(w, initTime, err, constants.MsgMissingFields, http.StatusBadRequest)
			return false
		}
		common.RespondError(w, initTime, err, constants.MsgInvalidJSON, http.StatusBadRequest)
		return false
	}

	fields, err := common.ValidateStruct(dst)
	if err != nil {
		common.RespondError(w, initTime, err, constants.MsgInvalidJSON, http.StatusBadRequest)
		return false
	}
	if fields != nil {
		common.RespondValidation(w, initTime, fields)
		return false
	}
	return true
}

// respondServiceError maps service error kinds to HTTP status codes
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		code = http.StatusConflict
	}
	common.RespondError(w, initTime, err, services.Message(err, constants.MsgInternal), code)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
