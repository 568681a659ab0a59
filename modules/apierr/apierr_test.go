package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/modules/apierr"
	"github.com/dmitrymomot/resumekit/pkg/ratelimiter"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/svc/aidraft"
	"github.com/dmitrymomot/resumekit/svc/resume"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		key    string
	}{
		{fmt.Errorf("%w: pro only", subscription.ErrEntitlementDenied), http.StatusPaymentRequired, "upgrade_required"},
		{subscription.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{errors.Join(subscription.ErrSignatureVerification, subscription.ErrMissingSignature), http.StatusBadRequest, "invalid_signature"},
		{errors.Join(subscription.ErrProviderUnavailable, errors.New("timeout")), http.StatusServiceUnavailable, "service_unavailable"},
		{subscription.ErrUnknownPrice, http.StatusUnprocessableEntity, "unknown_price"},
		{subscription.ErrAlreadySubscribed, http.StatusConflict, "already_subscribed"},
		{subscription.ErrInvalidSubscription, http.StatusInternalServerError, "invalid_subscription"},
		{resume.ErrNotFound, http.StatusNotFound, "not_found"},
		{aidraft.ErrModelUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{ratelimiter.ErrLimitExceeded, http.StatusTooManyRequests, "rate_limited"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			status, detail := handler.Classify(tt.err, apierr.Mappings()...)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.key, detail.Code)
		})
	}
}

func TestUnauthorized(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	apierr.Unauthorized(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("bad token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "unauthorized", body.Error.Code)
}
