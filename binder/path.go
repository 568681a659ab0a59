package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path fills string fields tagged `path:"name"` using extractor, typically
// chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidPath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			field := rt.Field(i)
			name := field.Tag.Get("path")
			if name == "" || name == "-" || !rv.Field(i).CanSet() {
				continue
			}
			if field.Type.Kind() != reflect.String {
				return fmt.Errorf("%w: field %s must be a string", ErrInvalidPath, field.Name)
			}
			if value := extractor(r, name); value != "" {
				rv.Field(i).SetString(value)
			}
		}
		return nil
	}
}
