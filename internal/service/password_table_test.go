package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authn-simple/internal/domain"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(u string) (string, bool) {
		v, ok := m[u]
		return v, ok
	}
}

func TestNewPasswordTable(t *testing.T) {
	table, err := NewPasswordTable(
		[]string{"alice", "bob"},
		lookupFrom(map[string]string{"alice": "h1", "bob": "h2", "carol": "h3"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.ElementsMatch(t, []string{"alice", "bob"}, table.Usernames())

	hash, ok := table.Lookup("alice")
	assert.True(t, ok)
	assert.Equal(t, "h1", hash)

	_, ok = table.Lookup("carol")
	assert.False(t, ok, "users outside the list are not loaded")
}

func TestNewPasswordTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		users []string
		want  string
	}{
		{name: "missing password", users: []string{"alice", "zed"}, want: "zed"},
		{name: "duplicate", users: []string{"alice", "alice"}, want: "alice"},
		{name: "empty username", users: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordTable(tt.users, lookupFrom(map[string]string{"alice": "h1"}))
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.want, cfgErr.Username)
		})
	}
}

func TestPasswordTableFromRecords(t *testing.T) {
	table, err := PasswordTableFromRecords([]domain.UserRecord{
		{Username: "alice", PasswordHash: "h1"},
		{Username: "bob", PasswordHash: "h2"},
	})
	require.NoError(t, err)
	hash, ok := table.Lookup("bob")
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)

	var empty PasswordTable
	_, ok = empty.Lookup("alice")
	assert.False(t, ok)
}
