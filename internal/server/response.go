package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/kapu/viralscope-go/pkg/errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeAppError maps err onto the {error, message} envelope.
func writeAppError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.CodeInternal
	}
	writeError(w, status, code, err.Error())
}

func envelopeOf(err error) *errorBody {
	if err == nil {
		return nil
	}
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.CodeInternal
	}
	return &errorBody{Error: code, Message: err.Error()}
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewValidationError("request body too large", "body", tooLarge.Limit)
		}
		return errors.NewValidationError("invalid JSON body: "+err.Error(), "body", nil)
	}
	return nil
}
