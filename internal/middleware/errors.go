package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/promptforge/generation-api/internal/model"
)

// WriteError writes err as an error envelope with the status its kind maps
// to. Errors outside the taxonomy are reported as INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := model.AsError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Kind.HTTPStatus())
	json.NewEncoder(w).Encode(e.Envelope(GetRequestID(r.Context())))
}
