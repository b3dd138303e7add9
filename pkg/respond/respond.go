package respond

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// Validation reports which input fields were rejected.
func Validation(w http.ResponseWriter, r *http.Request, fields []string) {
	if fields == nil {
		fields = []string{}
	}
	JSON(w, r, http.StatusBadRequest, map[string]any{
		"error":  "validation error",
		"fields": fields,
	})
}

// HTML writes a rendered page; render is called after the status line, so a
// render failure can only truncate the body.
func HTML(w http.ResponseWriter, r *http.Request, code int, render func(w http.ResponseWriter) error) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	return render(w)
}
