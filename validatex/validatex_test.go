package validatex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type preset struct {
	Code       string `json:"code" validate:"required"`
	StatusCode int    `json:"statusCode" validate:"gte=400,lte=599"`
}

type presets struct {
	Errors []preset `json:"errors" validate:"dive"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(presets{Errors: []preset{{Code: "A", StatusCode: 400}}}))
	assert.NoError(t, Struct(presets{}))
}

func TestStruct_FieldPaths(t *testing.T) {
	err := Struct(presets{Errors: []preset{
		{Code: "A", StatusCode: 404},
		{Code: "", StatusCode: 200},
	}})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{
		{Field: "errors[1].code", Message: "is required"},
		{Field: "errors[1].statusCode", Message: "must be at least 400"},
	}, verr.Fields)
	assert.Equal(t, "validation failed: errors[1].code: is required; errors[1].statusCode: must be at least 400", err.Error())
}

func TestStruct_NotAStruct(t *testing.T) {
	err := Struct("nope")
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}
