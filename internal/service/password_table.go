package service

import (
	"authn-simple/internal/domain"
)

// PasswordTable maps usernames to stored password hashes. It is never
// modified after construction and is safe for concurrent reads.
type PasswordTable struct {
	hashes map[string]string
}

// NewPasswordTable builds the table from the configured user list. lookup
// returns the stored hash for a user and whether one is configured.
func NewPasswordTable(users []string, lookup func(username string) (string, bool)) (PasswordTable, error) {
	hashes := make(map[string]string, len(users))
	for _, user := range users {
		if user == "" {
			return PasswordTable{}, &ConfigError{Reason: "empty username in user list"}
		}
		if _, dup := hashes[user]; dup {
			return PasswordTable{}, &ConfigError{Username: user, Reason: "listed more than once"}
		}
		hash, ok := lookup(user)
		if !ok {
			return PasswordTable{}, &ConfigError{Username: user, Reason: "no password configured"}
		}
		hashes[user] = hash
	}
	return PasswordTable{hashes: hashes}, nil
}

// PasswordTableFromRecords builds the table from stored user records.
func PasswordTableFromRecords(records []domain.UserRecord) (PasswordTable, error) {
	users := make([]string, len(records))
	byName := make(map[string]string, len(records))
	for i, rec := range records {
		users[i] = rec.Username
		byName[rec.Username] = rec.PasswordHash
	}
	return NewPasswordTable(users, func(username string) (string, bool) {
		hash, ok := byName[username]
		return hash, ok
	})
}

// Lookup returns the stored hash for username.
func (t PasswordTable) Lookup(username string) (string, bool) {
	hash, ok := t.hashes[username]
	return hash, ok
}

// Len returns the number of configured users.
func (t PasswordTable) Len() int {
	return len(t.hashes)
}

// Usernames returns the configured usernames in no particular order.
func (t PasswordTable) Usernames() []string {
	names := make([]string, 0, len(t.hashes))
	for name := range t.hashes {
		names = append(names, name)
	}
	return names
}
