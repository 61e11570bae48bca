package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAvatarURL is applied when a user is created without an avatar.
const DefaultAvatarURL = "https://www.kindpng.com/picc/m/24-248253_user-profile-default-image-png-clipart-png-download.png"

// User table.
//
// The unique index on username is the authoritative uniqueness guard:
// service-level pre-checks are a fast path for better error messages,
// but a concurrent registration race is decided here.
//
// Salt and Hash are credential material and must never appear in query
// projections returned to callers.
type User struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	Username  string    `gorm:"uniqueIndex;size:15;not null" json:"username"`
	Name      string    `gorm:"size:50" json:"name,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL string    `gorm:"size:200;not null" json:"avatar_url"`
	Salt      string    `gorm:"size:64;not null" json:"-"`
	Hash      string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.AvatarURL == "" {
		u.AvatarURL = DefaultAvatarURL
	}
	return nil
}

// Follow is a directed edge follower -> followed.
//
// Composite unique index (follower_id, followed_id) guarantees at most
// one active edge per pair. Edges hold references only: deleting a user
// does not cascade to their edges.
type Follow struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"follow_id"`
	FollowerID string    `gorm:"type:char(36);not null;uniqueIndex:idx_follower_followed,priority:1" json:"follower_id"`
	FollowedID string    `gorm:"type:char(36);not null;uniqueIndex:idx_follower_followed,priority:2" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// LikeKind discriminates the target namespace of a like edge. The three
// kinds live in separate tables and never overlap.
type LikeKind string

const (
	LikeComments LikeKind = "comments"
	LikeRoutes   LikeKind = "routes"
	LikePois     LikeKind = "pois"
)

// LikeKinds lists every valid kind, in the order the API returns them.
var LikeKinds = []LikeKind{LikeComments, LikeRoutes, LikePois}

// Valid reports whether k names a known like kind.
func (k LikeKind) Valid() bool {
	switch k {
	case LikeComments, LikeRoutes, LikePois:
		return true
	}
	return false
}

// Table returns the storage table for the kind.
func (k LikeKind) Table() string {
	switch k {
	case LikeComments:
		return "comment_likes"
	case LikeRoutes:
		return "route_likes"
	default:
		return "poi_likes"
	}
}

// Like is a directed edge user -> target, stored in one table per kind.
// Composite unique index (user_id, target_id) holds within each kind's
// table.
type Like struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"like_id"`
	UserID    string    `gorm:"type:char(36);not null;index:,unique,composite:user_target,priority:1" json:"user_id"`
	TargetID  string    `gorm:"type:char(36);not null;index:,unique,composite:user_target,priority:2" json:"target_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
