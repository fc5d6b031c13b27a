package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "leagueledger/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status. Encoding failures
// are ignored; by the time they happen the status line is already gone.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard JSON error envelope.
// Server-side faults (internal, unavailable) omit the description so internal
// detail never reaches the client; caller faults include it.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
	}

	body := map[string]string{"error": string(code)}
	if message != "" && code != dErrors.CodeInternal && code != dErrors.CodeUnavailable {
		body["error_description"] = message
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
