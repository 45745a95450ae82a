package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty("x"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("john.doe@example.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
}

func TestIsValidTimeOfDay(t *testing.T) {
	assert.True(t, IsValidTimeOfDay("06:00"))
	assert.True(t, IsValidTimeOfDay("22:00"))
	assert.False(t, IsValidTimeOfDay("25:00"))
	assert.False(t, IsValidTimeOfDay("6am"))
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(26.6814))
	assert.True(t, IsValidLongitude(68.0169))
	assert.False(t, IsValidLatitude(91))
	assert.False(t, IsValidLatitude(-91))
	assert.False(t, IsValidLongitude(181))
	assert.False(t, IsValidLongitude(-181))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "out of range"},
		{Field: "selfie", Message: "is required"},
	}
	assert.Equal(t, "latitude: out of range; selfie: is required", errs.Error())
	assert.Equal(t, map[string]string{
		"latitude": "out of range",
		"selfie":   "is required",
	}, errs.ToMap())
}
