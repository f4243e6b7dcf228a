package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOfAny_ScanValue(t *testing.T) {
	var m MapOfAny
	require.NoError(t, m.Scan([]byte(`{"a":1,"b":"x"}`)))
	assert.Equal(t, float64(1), m["a"])
	assert.Equal(t, "x", m["b"])

	var empty MapOfAny
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	v, err := MapOfAny(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	assert.Error(t, m.Scan(42))
}

func TestMapOfAny_ScanCopiesBuffer(t *testing.T) {
	buf := []byte(`{"k":"v"}`)
	var m MapOfAny
	require.NoError(t, m.Scan(buf))
	copy(buf, []byte(`{"k":"z"}`))
	assert.Equal(t, "v", m["k"])
}

func TestStringList_ScanValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestErrorHelpers(t *testing.T) {
	nf := fmt.Errorf("wrapped: %w", NewNotFoundError("product", "p-1"))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
	assert.Equal(t, "wrapped: product not found with ID: p-1", nf.Error())

	ve := fmt.Errorf("wrapped: %w", NewValidationError("name is required"))
	assert.True(t, IsValidation(ve))

	var ise *InvalidStateError
	err := fmt.Errorf("x: %w", NewInvalidStateError("submission", "s-1", "submitted", "no longer accepts products"))
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "submitted", ise.State)

	ite := &InvalidTransitionError{SubmissionID: "s-1", From: SubmissionStatusStep1Completed, To: SubmissionStatusSubmitted}
	assert.Contains(t, ite.Error(), "step1_completed -> submitted")
}
