// Package jsonutil writes JSON responses for the health checks and the
// editor's section export.
package jsonutil

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as JSON with the given status. A nil data writes only
// the status line and headers.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 JSON response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Attachment writes data as a pretty-printed JSON download named filename.
func Attachment(w http.ResponseWriter, filename string, data any) error {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, err = w.Write(append(body, '\n'))
	return err
}
