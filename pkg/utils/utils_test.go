package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "solemate-backend/pkg/errors"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateJWT("user-1", "a@b.c", "admin", time.Minute)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := ExtractClaims(r)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	expired, err := GenerateJWT("user-1", "a@b.c", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		reason string
		msg    string
	}{
		{"business rule", pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon expired").WithReason("COUPON_EXPIRED"), http.StatusUnprocessableEntity, "BUSINESS_RULE_VIOLATION", "COUPON_EXPIRED", "coupon expired"},
		{"state conflict", pkgerrors.New(pkgerrors.CodeStateConflict, "line already cancelled"), http.StatusConflict, "STATE_CONFLICT", "", "line already cancelled"},
		{"untyped", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR", "", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body errorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.reason, body.Error.Reason)
			assert.Equal(t, tt.msg, body.Error.Message)
		})
	}
}

type sampleRequest struct {
	Code     string `json:"code" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	decode := func(body string) (sampleRequest, error) {
		var req sampleRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSONBody(httptest.NewRecorder(), r, &req)
		return req, err
	}

	req, err := decode(`{"code":"TEN","quantity":2}`)
	require.NoError(t, err)
	assert.Equal(t, "TEN", req.Code)

	_, err = decode(`{"code":"TEN","quantity":9}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"quantity": "must be at most 5"}, typed.Details())

	_, err = decode(`{"code":"TEN","unknown":true}`)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = decode(`not json`)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
