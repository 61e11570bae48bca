package repository

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/db"
	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
)

// LikeTarget is the tagged union of likeable things: a kind plus the id
// of a comment, route or poi in that kind's namespace.
type LikeTarget struct {
	Kind     db.LikeKind
	TargetID string
}

// FollowEntry is a follow edge with the counterpart user's public
// projection attached: the followed user when listing who someone
// follows, the follower when listing followers.
type FollowEntry struct {
	FollowID  string     `json:"follow_id"`
	CreatedAt time.Time  `json:"created_at"`
	User      PublicUser `json:"user"`
}

// LikeCollections groups like edges by kind. A nil slice means the kind
// was not requested; a requested kind with no likes is an empty,
// non-nil slice.
type LikeCollections struct {
	Comments *[]db.Like `json:"comments,omitempty"`
	Routes   *[]db.Like `json:"routes,omitempty"`
	Pois     *[]db.Like `json:"pois,omitempty"`
}

// RelationshipRepository provides data access for Follow and Like edges.
// It holds references to user/comment/route/poi ids, never ownership:
// deleting a referenced record does not touch the edges.
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new repository bound to the given DB connection.
func NewRelationshipRepository(database *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: database}
}

// Follow creates a follow edge follower -> followed.
//
// The existence pre-check answers the common duplicate case; under a
// concurrent race the composite unique index decides, and the
// duplicate-key translation yields the same ErrAlreadyFollowing.
func (r *RelationshipRepository) Follow(ctx context.Context, followerID, followedID string) (*db.Follow, error) {
	exists, err := r.followExists(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, svcErr.ErrAlreadyFollowing
	}

	follow := db.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return nil, svcErr.Duplicate(err, svcErr.ErrAlreadyFollowing)
	}
	return &follow, nil
}

// Unfollow removes the follow edge follower -> followed.
// Fails ErrNotFollowing when no such edge exists.
func (r *RelationshipRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&db.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return svcErr.ErrNotFollowing
	}
	return nil
}

// ListFollowing returns the users the given user follows, newest edge
// first, with the followed user's public projection attached.
func (r *RelationshipRepository) ListFollowing(ctx context.Context, userID string) ([]FollowEntry, error) {
	return r.listFollowEdges(ctx, "f.follower_id = ?", "u.id = f.followed_id", userID)
}

// ListFollowers returns the users following the given user, newest edge
// first, with the follower's public projection attached.
func (r *RelationshipRepository) ListFollowers(ctx context.Context, userID string) ([]FollowEntry, error) {
	return r.listFollowEdges(ctx, "f.followed_id = ?", "u.id = f.follower_id", userID)
}

// CountFollowers returns how many users follow the given user.
// Used in conjunction with the Redis counter cache (DB is fallback).
func (r *RelationshipRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Follow{}).
		Where("followed_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Like creates a like edge user -> target in the target kind's table.
func (r *RelationshipRepository) Like(ctx context.Context, userID string, target LikeTarget) (*db.Like, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(target.Kind.Table()).
		Where("user_id = ? AND target_id = ?", userID, target.TargetID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, svcErr.ErrAlreadyLiked
	}

	like := db.Like{UserID: userID, TargetID: target.TargetID}
	if err := r.db.WithContext(ctx).Table(target.Kind.Table()).Create(&like).Error; err != nil {
		return nil, svcErr.Duplicate(err, svcErr.ErrAlreadyLiked)
	}
	return &like, nil
}

// Unlike removes the like edge user -> target.
// Fails ErrNotLiked when no such edge exists.
func (r *RelationshipRepository) Unlike(ctx context.Context, userID string, target LikeTarget) error {
	res := r.db.WithContext(ctx).
		Table(target.Kind.Table()).
		Where("user_id = ? AND target_id = ?", userID, target.TargetID).
		Delete(&db.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return svcErr.ErrNotLiked
	}
	return nil
}

// ListLikesByKind returns the user's likes of a single kind, newest
// first. Only the requested collection is populated.
func (r *RelationshipRepository) ListLikesByKind(ctx context.Context, userID string, kind db.LikeKind) (*LikeCollections, error) {
	likes, err := r.likesOfKind(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	result := &LikeCollections{}
	switch kind {
	case db.LikeComments:
		result.Comments = &likes
	case db.LikeRoutes:
		result.Routes = &likes
	case db.LikePois:
		result.Pois = &likes
	}
	return result, nil
}

// ListLikes returns all three like collections for a user, each sorted
// newest first. The three queries run concurrently.
func (r *RelationshipRepository) ListLikes(ctx context.Context, userID string) (*LikeCollections, error) {
	var comments, routes, pois []db.Like

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		comments, err = r.likesOfKind(gctx, userID, db.LikeComments)
		return err
	})
	g.Go(func() (err error) {
		routes, err = r.likesOfKind(gctx, userID, db.LikeRoutes)
		return err
	})
	g.Go(func() (err error) {
		pois, err = r.likesOfKind(gctx, userID, db.LikePois)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LikeCollections{
		Comments: &comments,
		Routes:   &routes,
		Pois:     &pois,
	}, nil
}

func (r *RelationshipRepository) likesOfKind(ctx context.Context, userID string, kind db.LikeKind) ([]db.Like, error) {
	likes := []db.Like{}
	err := r.db.WithContext(ctx).
		Table(kind.Table()).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *RelationshipRepository) listFollowEdges(ctx context.Context, edgeFilter, userJoin, userID string) ([]FollowEntry, error) {
	type row struct {
		FollowID      string
		EdgeCreatedAt time.Time
		ID            string
		Username      string
		Name          string
		Bio           string
		AvatarURL     string
		CreatedAt     time.Time
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("follows f").
		Select("f.id AS follow_id, f.created_at AS edge_created_at, "+
			"u.id, u.username, u.name, u.bio, u.avatar_url, u.created_at").
		Joins("JOIN users u ON "+userJoin).
		Where(edgeFilter, userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]FollowEntry, 0, len(rows))
	for _, rw := range rows {
		entries = append(entries, FollowEntry{
			FollowID:  rw.FollowID,
			CreatedAt: rw.EdgeCreatedAt,
			User: PublicUser{
				ID:        rw.ID,
				Username:  rw.Username,
				Name:      rw.Name,
				Bio:       rw.Bio,
				AvatarURL: rw.AvatarURL,
				CreatedAt: rw.CreatedAt,
			},
		})
	}
	return entries, nil
}

func (r *RelationshipRepository) followExists(ctx context.Context, followerID, followedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}
