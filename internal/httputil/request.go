package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxJSONBodySize bounds JSON request bodies. Import files are the largest.
const MaxJSONBodySize = 10 << 20

// ParseJSON decodes JSON from the request body into dest.
// Unknown members are accepted: document values are free-form maps and
// validation happens downstream.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
