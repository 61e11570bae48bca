package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/app"
	"github.com/trailnet/trailnet-backend/internal/cache"
	"github.com/trailnet/trailnet-backend/internal/config"
	"github.com/trailnet/trailnet-backend/internal/db"
	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
	"github.com/trailnet/trailnet-backend/internal/service/account"
	"github.com/trailnet/trailnet-backend/internal/utils/pagination"
)

//
// Test helpers
//

// setupService wires a service against an in-memory sqlite DB and a
// miniredis instance, mirroring the production AppContext.
func setupService(t *testing.T) (*account.Service, *app.AppContext) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	// silence logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(gdb, redisCache, logger)
	return account.NewService(appCtx), appCtx
}

func register(t *testing.T, svc *account.Service, username, password string) string {
	t.Helper()
	user, err := svc.Register(context.Background(), account.RegisterInput{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return user.ID
}

//
// Registration & authentication
//

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, err := svc.Register(ctx, account.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, db.DefaultAvatarURL, user.AvatarURL)

	assert.NoError(t, svc.Authenticate(ctx, "alice", "secret1"))
	assert.ErrorIs(t, svc.Authenticate(ctx, "alice", "wrong"), svcErr.ErrIncorrectPassword)
	assert.ErrorIs(t, svc.Authenticate(ctx, "bob", "x"), svcErr.ErrUsernameNotFound)
}

func TestRegister_MissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Register(ctx, account.RegisterInput{Username: "alice"})
	assert.ErrorIs(t, err, svcErr.ErrMissingField)

	_, err = svc.Register(ctx, account.RegisterInput{Password: "secret1"})
	assert.ErrorIs(t, err, svcErr.ErrMissingField)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	register(t, svc, "alice", "secret1")

	_, err := svc.Register(ctx, account.RegisterInput{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, svcErr.ErrUsernameTaken)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	assert.ErrorIs(t, svc.Authenticate(ctx, "", "x"), svcErr.ErrMissingField)
	assert.ErrorIs(t, svc.Authenticate(ctx, "alice", ""), svcErr.ErrMissingField)
}

//
// Profile updates
//

func TestUpdateProfile_PasswordRotation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	id := register(t, svc, "alice", "secret1")

	newPassword := "secret2"
	_, err := svc.UpdateProfile(ctx, id, account.UpdateProfileInput{Password: &newPassword})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Authenticate(ctx, "alice", "secret1"), svcErr.ErrIncorrectPassword)
	assert.NoError(t, svc.Authenticate(ctx, "alice", "secret2"))
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	id := register(t, svc, "alice", "secret1")

	bio := "weekend trail runner"
	user, err := svc.UpdateProfile(ctx, id, account.UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, "alice", user.Username)

	// password untouched
	assert.NoError(t, svc.Authenticate(ctx, "alice", "secret1"))
}

func TestRemoveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	id := register(t, svc, "alice", "secret1")

	require.NoError(t, svc.RemoveAccount(ctx, id))
	assert.ErrorIs(t, svc.RemoveAccount(ctx, id), svcErr.ErrNotFound)

	_, err := svc.GetUser(ctx, id)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestRemoveAccount_EdgesLeftInPlace(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")
	bobID := register(t, svc, "bob", "secret2")

	_, err := svc.Follow(ctx, aliceID, bobID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAccount(ctx, aliceID))

	// the follow edge dangles rather than cascading
	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Follow{}).Where("follower_id = ?", aliceID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

//
// Directory listing
//

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	register(t, svc, "alice", "secret1")
	register(t, svc, "bob", "secret2")

	page, err := svc.ListUsers(ctx, pagination.Params{Page: 1, Limit: 0})
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(2), page.TotalResults)

	_, err = svc.ListUsers(ctx, pagination.Params{Page: 2, Limit: 10})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

//
// Social graph
//

func TestFollowUnfollowCycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")
	bobID := register(t, svc, "bob", "secret2")

	_, err := svc.Follow(ctx, aliceID, bobID)
	require.NoError(t, err)

	_, err = svc.Follow(ctx, aliceID, bobID)
	assert.ErrorIs(t, err, svcErr.ErrAlreadyFollowing)

	require.NoError(t, svc.Unfollow(ctx, aliceID, bobID))
	assert.ErrorIs(t, svc.Unfollow(ctx, aliceID, bobID), svcErr.ErrNotFollowing)
}

func TestFollow_MissingField(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")

	_, err := svc.Follow(ctx, aliceID, "")
	assert.ErrorIs(t, err, svcErr.ErrMissingField)
	assert.ErrorIs(t, svc.Unfollow(ctx, aliceID, ""), svcErr.ErrMissingField)
}

func TestListFollowingPopulatesUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")
	bobID := register(t, svc, "bob", "secret2")

	_, err := svc.Follow(ctx, aliceID, bobID)
	require.NoError(t, err)

	following, err := svc.ListFollowing(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].User.Username)

	followers, err := svc.ListFollowers(ctx, bobID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].User.Username)
}

func TestCountFollowers_CacheFirst(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")
	bobID := register(t, svc, "bob", "secret2")

	_, err := svc.Follow(ctx, aliceID, bobID)
	require.NoError(t, err)

	// first read falls back to DB and populates the cache
	count, err := svc.CountFollowers(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	cached, ok, err := appCtx.RedisCache.GetFollowerCount(ctx, bobID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), cached)

	// a follow against a warm cache adjusts the counter in place
	carolID := register(t, svc, "carol", "secret3")
	_, err = svc.Follow(ctx, carolID, bobID)
	require.NoError(t, err)

	count, err = svc.CountFollowers(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// unfollow decrements it again
	require.NoError(t, svc.Unfollow(ctx, carolID, bobID))
	count, err = svc.CountFollowers(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

//
// Likes
//

func TestLikesLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")

	_, err := svc.Like(ctx, aliceID, "routes", "route-1")
	require.NoError(t, err)
	_, err = svc.Like(ctx, aliceID, "routes", "route-1")
	assert.ErrorIs(t, err, svcErr.ErrAlreadyLiked)

	_, err = svc.Like(ctx, aliceID, "comments", "comment-1")
	require.NoError(t, err)

	all, err := svc.ListLikes(ctx, aliceID, "")
	require.NoError(t, err)
	require.NotNil(t, all.Routes)
	require.NotNil(t, all.Comments)
	require.NotNil(t, all.Pois)
	assert.Len(t, *all.Routes, 1)
	assert.Len(t, *all.Comments, 1)
	assert.Empty(t, *all.Pois)

	filtered, err := svc.ListLikes(ctx, aliceID, "routes")
	require.NoError(t, err)
	require.NotNil(t, filtered.Routes)
	assert.Nil(t, filtered.Comments)

	require.NoError(t, svc.Unlike(ctx, aliceID, "routes", "route-1"))
	assert.ErrorIs(t, svc.Unlike(ctx, aliceID, "routes", "route-1"), svcErr.ErrNotLiked)
}

func TestListLikes_InvalidKind(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")

	_, err := svc.ListLikes(ctx, aliceID, "bogus")
	assert.ErrorIs(t, err, svcErr.ErrInvalidQuery)

	_, err = svc.Like(ctx, aliceID, "bogus", "t1")
	assert.ErrorIs(t, err, svcErr.ErrInvalidQuery)
}

func TestLike_MissingTarget(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	aliceID := register(t, svc, "alice", "secret1")

	_, err := svc.Like(ctx, aliceID, "routes", "")
	assert.ErrorIs(t, err, svcErr.ErrMissingField)
}
