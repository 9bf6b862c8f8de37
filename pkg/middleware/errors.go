package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same {"error":{code,message}} envelope as
// pkg/httputil so clients parse middleware rejections uniformly.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
