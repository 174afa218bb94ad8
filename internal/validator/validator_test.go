package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Status   string `json:"status" validate:"omitempty,oneof=open closed"`
	YearsExp int    `json:"yearsExperience" validate:"gte=0,lte=60"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(samplePayload{
		Name:     "Dana",
		Email:    "dana@example.com",
		Status:   "open",
		YearsExp: 9,
	})
	assert.NoError(t, err)
}

func TestValidate_FieldNamesFromJSONTags(t *testing.T) {
	err := Validate(samplePayload{Name: "Dana", Email: "dana@example.com", YearsExp: 99})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "yearsExperience", verrs[0].Field)
	assert.Equal(t, "must be at most 60", verrs[0].Message)
}

func TestValidate_Messages(t *testing.T) {
	err := Validate(samplePayload{Name: "D", Email: "nope", Status: "paused"})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	byField := map[string]string{}
	for _, ve := range verrs {
		byField[ve.Field] = ve.Message
	}
	assert.Equal(t, "must be at least 2 characters", byField["name"])
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be one of: open closed", byField["status"])
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := ValidationErrors{
		{Field: "name", Message: "is required"},
		{Field: "email", Message: "must be a valid email address"},
	}
	assert.Equal(t, "name: is required; email: must be a valid email address", verrs.Error())
}
