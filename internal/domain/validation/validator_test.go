package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"staffleave/internal/domain/apperr"
)

type staffPayload struct {
	Name     string `json:"name" validate:"required_text"`
	IC       string `json:"icNumber" validate:"omitempty,identity_number"`
	Employed string `json:"employmentType" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT"`
}

func TestStructAcceptsValidPayload(t *testing.T) {
	v := New()
	err := Struct(v, staffPayload{Name: "John Doe", IC: "123456-78-9012", Employed: "FULL_TIME"})
	require.NoError(t, err)
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	v := New()
	err := Struct(v, staffPayload{Name: "  ", IC: "12345-78-9012"})
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 2)
	require.Equal(t, "name", ve.Errors[0].Field)
	require.Equal(t, "name is required", ve.Reason())
	require.Equal(t, "icNumber", ve.Errors[1].Field)
}

func TestStructRejectsUnknownEnum(t *testing.T) {
	err := Struct(New(), staffPayload{Name: "Jane", Employed: "SEASONAL"})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "employmentType must be one of FULL_TIME PART_TIME CONTRACT", ve.Reason())
}
