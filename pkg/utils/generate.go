package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== BOOKING REFERENCE ====================

// GenerateBookingReference returns BOOK-YYYYMMDD-HHMMSS-XXXXXXXX for the given
// instant. The suffix is 32 random bits taken from a fresh v4 UUID; callers
// still retry on a unique violation.
func GenerateBookingReference(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("BOOK-%s-%s-%s",
		now.Format("20060102"),
		now.Format("150405"),
		strings.ToUpper(hex.EncodeToString(id[:4])),
	)
}
