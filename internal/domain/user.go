package domain

import "time"

// UserRecord is a configured account and its stored password hash.
type UserRecord struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialRequest carries the credentials offered by a single login call.
// A nil field was not supplied by the caller.
type CredentialRequest struct {
	Username *string
	Password *string
	IP       *string
}

// Identity is the assertion returned on a successful login.
type Identity struct {
	Username  string `json:"username"`
	Mechanism string `json:"mechanism,omitempty"`
}

// DescriptionKey describes one credential field accepted by the authenticator.
type DescriptionKey struct {
	Name string `json:"name"`
	Hide bool   `json:"hide,omitempty"`
}
