package models

import "time"

// PrimaryUserID is the reserved identifier of the primary account holder
// (the person operating the app). It is never stored in the user directory
// but always resolves as a valid payer or participant.
const PrimaryUserID = "primary"

// User represents a participant in the user directory.
type User struct {
	// ID is the unique identifier for the user (UUID format), or PrimaryUserID.
	ID string

	// Name is the display name of the user.
	Name string

	// CreatedAt is when the user was added to the directory.
	CreatedAt time.Time

	// UpdatedAt is when the user record was last written.
	UpdatedAt time.Time
}
