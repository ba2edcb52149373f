package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

var (
	// ErrInvalidUUID indicates the string is not a valid UUID format
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrNotUUIDv7 indicates the UUID is not version 7
	ErrNotUUIDv7 = errors.New("UUID must be version 7")
	// ErrFutureTimestamp indicates the UUIDv7 timestamp is too far in the future
	ErrFutureTimestamp = errors.New("UUID timestamp is too far in the future")
)

// ValidateUUIDv7 validates that id is a UUIDv7 whose embedded timestamp is no more
// than models.MaxFutureSkew ahead of now.
func ValidateUUIDv7(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, parsed.Version())
	}

	// For UUIDv7 the 100ns Gregorian time is derived from embedded Unix milliseconds
	sec, nsec := parsed.Time().UnixTime()
	timestamp := time.Unix(sec, nsec)

	if timestamp.After(now.Add(models.MaxFutureSkew)) {
		return fmt.Errorf("%w: %v is more than %v ahead",
			ErrFutureTimestamp, timestamp.Format(time.RFC3339), models.MaxFutureSkew)
	}

	return nil
}

// newID generates a time-ordered identifier for entries and goals
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// resolveEntryID keeps a valid client-supplied UUIDv7 so offline clients can retry
// safely, and generates one otherwise.
func resolveEntryID(clientID string, now time.Time) (string, error) {
	if clientID == "" {
		return newID()
	}
	if err := ValidateUUIDv7(clientID, now); err != nil {
		return "", err
	}
	return clientID, nil
}
