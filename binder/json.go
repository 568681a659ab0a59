package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxJSONBody caps request bodies read by BindJSON.
const MaxJSONBody = 1 << 20

// BindJSON decodes an application/json body into v, rejecting unknown
// fields and trailing data. Requests without a body are left untouched.
func BindJSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			return ErrBinderNotApplicable
		}

		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, ct)
		}

		dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			}
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}
