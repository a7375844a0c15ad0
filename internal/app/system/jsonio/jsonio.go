// Package jsonio reads and writes JSON request and response bodies.
package jsonio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/inputval"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into dst and validates its struct tags.
// Malformed JSON and failed rules come back as httperr InvalidArgument.
// An empty body decodes to the zero value before validation.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return httperr.Wrap(httperr.InvalidArgument, "Invalid JSON body", err)
	}
	if err := inputval.Struct(dst); err != nil {
		return httperr.Wrap(httperr.InvalidArgument, err.Error(), nil)
	}
	return nil
}
