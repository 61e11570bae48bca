package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/db"
	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
	"github.com/trailnet/trailnet-backend/internal/repository"
	"github.com/trailnet/trailnet-backend/internal/utils/pagination"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// a single in-memory sqlite database per test
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func newUser(username string) *db.User {
	return &db.User{
		Username: username,
		Salt:     "73616c74",
		Hash:     "68617368",
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	user, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, db.DefaultAvatarURL, user.AvatarURL)
}

func TestCreateUser_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	_, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("alice"))
	assert.ErrorIs(t, err, svcErr.ErrUsernameTaken)
}

func TestCreateUser_ProjectionExcludesCredentials(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	created, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// the stored record still has credentials, the projection does not
	creds, err := repo.FindCredentials(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, creds.Salt)
	assert.NotEmpty(t, creds.Hash)
}

func TestFindCredentials_UnknownUsername(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	_, err := repo.FindCredentials(ctx, "nobody")
	assert.ErrorIs(t, err, svcErr.ErrUsernameNotFound)
}

func TestListUsers_Pagination(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 15; i++ {
		u := newUser(usernameN(i))
		u.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, gdb.Create(u).Error)
	}

	page, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Users, 10)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(15), page.TotalResults)
	// newest first
	assert.Equal(t, usernameN(14), page.Users[0].Username)

	page, err = repo.List(ctx, pagination.Params{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.Equal(t, usernameN(4), page.Users[0].Username)
}

func TestListUsers_LimitZeroReturnsAll(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	for i := 0; i < 15; i++ {
		require.NoError(t, gdb.Create(newUser(usernameN(i))).Error)
	}

	page, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 0})
	require.NoError(t, err)
	assert.Len(t, page.Users, 15)
	assert.Equal(t, int64(15), page.TotalResults)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListUsers_PageOverflow(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	for i := 0; i < 10; i++ {
		require.NoError(t, gdb.Create(newUser(usernameN(i))).Error)
	}

	_, err := repo.List(ctx, pagination.Params{Page: 2, Limit: 10})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestListUsers_EmptyDirectory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	page, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Users)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(0), page.TotalResults)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	user, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)

	bio := "hill repeats enthusiast"
	updated, err := repo.Update(ctx, user.ID, repository.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	// untouched fields stay
	assert.Equal(t, "alice", updated.Username)
}

func TestUpdateUser_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	_, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)
	bob, err := repo.Create(ctx, newUser("bob"))
	require.NoError(t, err)

	taken := "alice"
	_, err = repo.Update(ctx, bob.ID, repository.UserUpdate{Username: &taken})
	assert.ErrorIs(t, err, svcErr.ErrUsernameTaken)
}

func TestUpdateUser_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	bio := "x"
	_, err := repo.Update(ctx, "missing-id", repository.UserUpdate{Bio: &bio})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	user, err := repo.Create(ctx, newUser("alice"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err = repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	// second delete is a NotFound
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), svcErr.ErrNotFound)
}

func usernameN(i int) string {
	return "user" + string(rune('a'+i%26)) + string(rune('a'+i/26))
}
