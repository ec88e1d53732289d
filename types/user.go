package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. It is stored lower-cased and is
	// unique across accounts.
	Email string `json:"email" db:"email"`

	// Name is the user's first name.
	Name string `json:"name,omitempty" db:"name"`

	// Surname is the user's family name.
	Surname string `json:"surname,omitempty" db:"surname"`

	// Age is the user's age in years; zero means not provided.
	Age int `json:"age,omitempty" db:"age"`

	// Avatar is the object-storage key of the user's avatar image, if any.
	Avatar string `json:"avatar,omitempty" db:"avatar"`

	// Active reports whether the account may authenticate. Deactivated
	// accounts keep their data but cannot log in.
	Active bool `json:"active" db:"active"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
