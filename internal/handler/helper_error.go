package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func WriteError(w http.ResponseWriter, status int, reason string) {
	statusText := strings.ToLower(http.StatusText(status))
	statusText = strings.ReplaceAll(statusText, " ", "_")
	statusText = strings.ReplaceAll(statusText, "'", "")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{ // nolint: errcheck
		Error:  statusText,
		Reason: reason,
	})
}

// WriteErr maps engine errors to their HTTP representation.
func WriteErr(w http.ResponseWriter, err error) {
	var me *model.Error
	if errors.As(err, &me) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(me.Status)
		json.NewEncoder(w).Encode(ErrorResponse{ // nolint: errcheck
			Error:  me.Name,
			Reason: me.Message,
		})
		return
	}

	switch {
	case errors.Is(err, port.ErrNotFound):
		WriteError(w, http.StatusNotFound, "missing")
	case errors.Is(err, port.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
