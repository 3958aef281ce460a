package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SeatIDs     []string `json:"seatIds" validate:"required,min=1,dive,uuid"`
	UserID      string   `json:"userId" validate:"notblank"`
	HoldMinutes *int     `json:"holdMinutes,omitempty" validate:"omitempty,min=5,max=10"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidateStruct_UsesJSONFieldNames(t *testing.T) {
	four := 4
	errs := ValidateStruct(sampleRequest{
		SeatIDs:     []string{"not-a-uuid"},
		UserID:      "   ",
		HoldMinutes: &four,
		Email:       "nope",
	})

	require.Len(t, errs, 4)
	assert.Equal(t, "Must be a valid UUID", errs["seatIds[0]"])
	assert.Equal(t, "Must not be blank", errs["userId"])
	assert.Equal(t, "Must be at least 5", errs["holdMinutes"])
	assert.Equal(t, "Invalid email format", errs["email"])
}

func TestValidateStruct_Valid(t *testing.T) {
	ten := 10
	errs := ValidateStruct(sampleRequest{
		SeatIDs:     []string{"5b0c8a8e-6f0e-4f43-9d0c-3c1f7a3f9d11"},
		UserID:      "u1",
		HoldMinutes: &ten,
	})
	assert.Nil(t, errs)
}

func TestFormatValidationErrors_SortedByField(t *testing.T) {
	got := FormatValidationErrors(map[string]string{"userId": "b", "seatIds": "a"})
	assert.Equal(t, "seatIds: a; userId: b", got)
}

func TestGenerateBookingReference(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 5, 9, 0, time.UTC)
	ref := GenerateBookingReference(now)
	assert.Regexp(t, regexp.MustCompile(`^BOOK-20260314-180509-[0-9A-F]{8}$`), ref)
	assert.LessOrEqual(t, len(ref), 40, "fits bookings.reference")
}

func TestGenerateBookingReference_UniqueWithinOneSecond(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 5, 9, 0, time.UTC)
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		ref := GenerateBookingReference(now)
		require.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(90*time.Second + 500*time.Millisecond)
	earlier := now.Add(-time.Second)

	assert.Equal(t, int64(90), RemainingSeconds(&later, now))
	assert.Equal(t, int64(0), RemainingSeconds(&earlier, now))
	assert.Equal(t, int64(0), RemainingSeconds(nil, now))
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "x", FirstNonBlank("", "  ", " x "))
	assert.Equal(t, "", FirstNonBlank("", " "))
}
