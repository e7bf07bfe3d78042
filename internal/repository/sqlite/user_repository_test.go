package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authn-simple/internal/domain"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "authn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))
	require.NoError(t, repo.Init(ctx), "init is idempotent")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	bob := &domain.UserRecord{Username: "bob", PasswordHash: "h2"}
	require.NoError(t, repo.Create(ctx, &domain.UserRecord{Username: "alice", PasswordHash: "h1"}))
	require.NoError(t, repo.Create(ctx, bob))
	assert.False(t, bob.CreatedAt.IsZero())

	err = repo.Create(ctx, &domain.UserRecord{Username: "alice", PasswordHash: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "h1", users[0].PasswordHash)
	assert.Equal(t, "bob", users[1].Username)
}
