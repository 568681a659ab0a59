package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/binder"
	"github.com/dmitrymomot/resumekit/handler"
)

var errDenied = errors.New("denied")

type greetRequest struct {
	Name string `json:"name" validate:"required,max=5"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var out handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWrap(t *testing.T) {
	t.Parallel()

	validate := validator.New()
	errHandler := handler.NewErrorHandler(nil, handler.Map(errDenied, http.StatusPaymentRequired, "upgrade_required"))

	h := handler.Wrap(func(ctx handler.Context, req greetRequest) handler.Response {
		if err := validate.Struct(req); err != nil {
			return handler.JSONError(handler.Classify(err))
		}
		if req.Name == "eve" {
			return handler.Fail(fmt.Errorf("greet: %w", errDenied))
		}
		return handler.JSON(map[string]string{"hello": req.Name}, handler.WithJSONStatus(http.StatusCreated))
	},
		handler.WithBinders[handler.Context, greetRequest](binder.BindJSON()),
		handler.WithErrorHandler[handler.Context, greetRequest](errHandler),
	)

	serve := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		rec := serve(`{"name":"bob"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, map[string]any{"hello": "bob"}, decodeEnvelope(t, rec).Data)
	})

	t.Run("binding error", func(t *testing.T) {
		t.Parallel()
		rec := serve(`{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeEnvelope(t, rec).Error.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()
		rec := serve(`{"name":"too long name"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "validation_error", env.Error.Code)
		assert.Contains(t, env.Error.Details, "Name")
	})

	t.Run("mapped domain error", func(t *testing.T) {
		t.Parallel()
		rec := serve(`{"name":"eve"}`)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "upgrade_required", decodeEnvelope(t, rec).Error.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		nilHandler := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil },
			handler.WithErrorHandler[handler.Context, struct{}](errHandler))
		rec := httptest.NewRecorder()
		nilHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	code, detail := handler.Classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal_error", detail.Code)

	code, detail = handler.Classify(fmt.Errorf("wrapped: %w", handler.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", detail.Code)

	code, _ = handler.Classify(binder.ErrUnsupportedMediaType)
	assert.Equal(t, http.StatusUnsupportedMediaType, code)

	ve := handler.ValidationError{}
	ve.Add("priceId", "is required")
	code, detail = handler.Classify(ve)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"is required"}, detail.Details["priceId"])
}
