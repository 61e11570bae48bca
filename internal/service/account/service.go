package account

import (
	"context"

	"github.com/trailnet/trailnet-backend/internal/app"
	"github.com/trailnet/trailnet-backend/internal/cache"
	"github.com/trailnet/trailnet-backend/internal/credentials"
	"github.com/trailnet/trailnet-backend/internal/db"
	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
	"github.com/trailnet/trailnet-backend/internal/repository"
	"github.com/trailnet/trailnet-backend/internal/utils/pagination"
)

// Service implements the account and social-graph operations.
// It contains the business logic on top of repository and cache layers:
// registration, authentication, profile updates and the follow/like
// graph. The credential codec is invoked only here, never by storage.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	rels   *repository.RelationshipRepository
}

// NewService creates a new account service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via UserRepository / RelationshipRepository)
//   - RedisCache for follower counters from AppContext
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		rels:   repository.NewRelationshipRepository(appCtx.DB),
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Password  string `json:"password"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
	Password  *string `json:"password"`
}

// Register creates a new account. This is the only path that produces
// credentials: a fresh salt is drawn and the hash derived before the
// record is handed to storage.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*repository.PublicUser, error) {
	s.appCtx.Logger.Debug("Register called", "username", in.Username)

	if in.Username == "" || in.Password == "" {
		return nil, svcErr.ErrMissingField
	}

	salt, err := credentials.GenerateSalt()
	if err != nil {
		s.appCtx.Logger.Error("salt generation failed", "err", err)
		return nil, err
	}

	user := &db.User{
		Username:  in.Username,
		Name:      in.Name,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
		Salt:      salt,
		Hash:      credentials.HashPassword(in.Password, salt),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.appCtx.Logger.Debug("Register rejected", "username", in.Username, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate verifies a username/password pair. It is a stateless
// yes/no check: no session or token is issued.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	s.appCtx.Logger.Debug("Authenticate called", "username", username)

	if username == "" || password == "" {
		return svcErr.ErrMissingField
	}

	user, err := s.users.FindCredentials(ctx, username)
	if err != nil {
		return svcErr.Map(err)
	}

	if !credentials.ValidPassword(password, user.Hash, user.Salt) {
		s.appCtx.Logger.Debug("Authenticate rejected", "username", username)
		return svcErr.ErrIncorrectPassword
	}
	return nil
}

// UpdateProfile applies a partial update. A new password regenerates
// salt and hash together.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*repository.PublicUser, error) {
	s.appCtx.Logger.Debug("UpdateProfile called", "user_id", userID)

	update := repository.UserUpdate{
		Username:  in.Username,
		AvatarURL: in.AvatarURL,
		Bio:       in.Bio,
	}

	if in.Password != nil {
		salt, err := credentials.GenerateSalt()
		if err != nil {
			s.appCtx.Logger.Error("salt generation failed", "err", err)
			return nil, err
		}
		hash := credentials.HashPassword(*in.Password, salt)
		update.Salt = &salt
		update.Hash = &hash
	}

	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// RemoveAccount hard-deletes a user. Follow and like edges referencing
// the user are left in place.
func (s *Service) RemoveAccount(ctx context.Context, userID string) error {
	s.appCtx.Logger.Debug("RemoveAccount called", "user_id", userID)
	return svcErr.Map(s.users.Delete(ctx, userID))
}

// ListUsers returns a directory page.
func (s *Service) ListUsers(ctx context.Context, p pagination.Params) (*repository.UserPage, error) {
	page, err := s.users.List(ctx, p)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return page, nil
}

// GetUser returns the public projection for a user id.
func (s *Service) GetUser(ctx context.Context, userID string) (*repository.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// GetUserByUsername returns the public projection for a username.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*repository.PublicUser, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// Follow creates a follow edge and bumps the followed user's cached
// follower count when one is present.
func (s *Service) Follow(ctx context.Context, followerID, followedID string) (*db.Follow, error) {
	s.appCtx.Logger.Debug("Follow called", "follower", followerID, "followed", followedID)

	if followedID == "" {
		return nil, svcErr.ErrMissingField
	}

	follow, err := s.rels.Follow(ctx, followerID, followedID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.adjustFollowerCount(ctx, followedID, +1)
	return follow, nil
}

// Unfollow removes a follow edge and decrements the cached count.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID string) error {
	s.appCtx.Logger.Debug("Unfollow called", "follower", followerID, "followed", followedID)

	if followedID == "" {
		return svcErr.ErrMissingField
	}

	if err := s.rels.Unfollow(ctx, followerID, followedID); err != nil {
		return svcErr.Map(err)
	}

	s.adjustFollowerCount(ctx, followedID, -1)
	return nil
}

// ListFollowing returns the users the given user follows.
func (s *Service) ListFollowing(ctx context.Context, userID string) ([]repository.FollowEntry, error) {
	entries, err := s.rels.ListFollowing(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return entries, nil
}

// ListFollowers returns the users following the given user.
func (s *Service) ListFollowers(ctx context.Context, userID string) ([]repository.FollowEntry, error) {
	entries, err := s.rels.ListFollowers(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return entries, nil
}

// CountFollowers returns how many users follow the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis (followers:count:userID).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, updates Redis with the counter TTL.
func (s *Service) CountFollowers(ctx context.Context, userID string) (int64, error) {
	if n, ok, err := s.appCtx.RedisCache.GetFollowerCount(ctx, userID); err == nil && ok {
		return n, nil
	}

	count, err := s.rels.CountFollowers(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if err := s.appCtx.RedisCache.UpdateFollowerCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("failed to cache follower count", "user_id", userID, "err", err)
	}
	return count, nil
}

// ListLikes returns the user's like collections. With a kind filter only
// that collection is fetched; without one all three are fetched
// concurrently. An unknown kind is an invalid query.
func (s *Service) ListLikes(ctx context.Context, userID, kind string) (*repository.LikeCollections, error) {
	s.appCtx.Logger.Debug("ListLikes called", "user_id", userID, "kind", kind)

	if kind != "" {
		k := db.LikeKind(kind)
		if !k.Valid() {
			return nil, svcErr.ErrInvalidQuery
		}
		likes, err := s.rels.ListLikesByKind(ctx, userID, k)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return likes, nil
	}

	likes, err := s.rels.ListLikes(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return likes, nil
}

// Like creates a like edge toward a comment, route or poi.
func (s *Service) Like(ctx context.Context, userID, kind, targetID string) (*db.Like, error) {
	s.appCtx.Logger.Debug("Like called", "user_id", userID, "kind", kind, "target", targetID)

	if targetID == "" {
		return nil, svcErr.ErrMissingField
	}
	k := db.LikeKind(kind)
	if !k.Valid() {
		return nil, svcErr.ErrInvalidQuery
	}

	like, err := s.rels.Like(ctx, userID, repository.LikeTarget{Kind: k, TargetID: targetID})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return like, nil
}

// Unlike removes a like edge.
func (s *Service) Unlike(ctx context.Context, userID, kind, targetID string) error {
	s.appCtx.Logger.Debug("Unlike called", "user_id", userID, "kind", kind, "target", targetID)

	if targetID == "" {
		return svcErr.ErrMissingField
	}
	k := db.LikeKind(kind)
	if !k.Valid() {
		return svcErr.ErrInvalidQuery
	}

	return svcErr.Map(s.rels.Unlike(ctx, userID, repository.LikeTarget{Kind: k, TargetID: targetID}))
}

// adjustFollowerCount nudges an existing cached counter. A missing key
// is left alone so the next read repopulates it from the DB.
func (s *Service) adjustFollowerCount(ctx context.Context, userID string, delta int64) {
	key := s.appCtx.RedisCache.KeyForFollowerCount(userID)
	exists, err := s.appCtx.RedisCache.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	if delta > 0 {
		_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	} else {
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
	}
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.CounterTTL).Err()
}
