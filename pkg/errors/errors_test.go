package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "load wallet")

	require.NotNil(t, err)
	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "load wallet", err.Message())
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeValidation, nil, "amount must be positive")

	require.NotNil(t, err)
	assert.Equal(t, CodeValidation, err.Code())
	assert.NoError(t, err.Unwrap())
}

func TestCodeOfUntypedErrorDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("boom")))
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestCodeOfUnwrapsNestedError(t *testing.T) {
	inner := New(CodePayment, "insufficient wallet balance")
	outer := fmt.Errorf("capture: %w", inner)

	assert.Equal(t, CodePayment, CodeOf(outer))
	require.NotNil(t, As(outer))
	assert.Equal(t, "insufficient wallet balance", As(outer).Message())
}

func TestMetadataForKnownCodes(t *testing.T) {
	payment := MetadataFor(CodePayment)
	assert.Equal(t, http.StatusPaymentRequired, payment.HTTPStatus)
	assert.True(t, payment.DetailsAllowed)
	assert.False(t, payment.Retryable)

	dependency := MetadataFor(CodeDependency)
	assert.Equal(t, http.StatusServiceUnavailable, dependency.HTTPStatus)
	assert.True(t, dependency.Retryable)

	state := MetadataFor(CodeStateConflict)
	assert.Equal(t, http.StatusConflict, state.HTTPStatus)
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"rating": "must be between 1 and 5"})

	require.NotNil(t, err.Details())
	details, ok := err.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be between 1 and 5", details["rating"])
}
