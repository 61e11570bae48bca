package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/db"
	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
	"github.com/trailnet/trailnet-backend/internal/utils/pagination"
)

// publicColumns is the projection safe to expose externally. Salt and
// hash never leave the repository except via FindCredentials.
const publicColumns = "id, username, name, bio, avatar_url, created_at"

// PublicUser is the externally visible projection of a user record.
type PublicUser struct {
	ID        string    `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPage is one page of the user directory listing.
type UserPage struct {
	Users        []PublicUser `json:"users"`
	TotalPages   int          `json:"totalPages"`
	Page         int          `json:"page"`
	TotalResults int64        `json:"totalResults"`
}

// UserUpdate enumerates the fields a profile update may change. Nil
// fields are left untouched. Salt and Hash travel together: the service
// regenerates both when a new password is supplied.
type UserUpdate struct {
	Username  *string
	AvatarURL *string
	Bio       *string
	Salt      *string
	Hash      *string
}

// UserRepository provides data access methods for the User model.
// It owns user records and is the authoritative enforcement point for
// username uniqueness.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// List returns a page of users sorted by creation time descending.
//
// Behavior:
//   - Limit 0 means "all users, no pagination".
//   - Requesting a page beyond the last one fails with ErrNotFound.
//   - Credential fields are excluded from the projection.
func (r *UserRepository) List(ctx context.Context, p pagination.Params) (*UserPage, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := p.TotalPages(total)
	if !p.Unpaginated() && p.Page > totalPages {
		return nil, svcErr.ErrNotFound
	}

	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select(publicColumns).
		Order("created_at DESC, id DESC")
	if !p.Unpaginated() {
		query = query.Offset(p.Offset()).Limit(p.Limit)
	}

	users := []PublicUser{}
	if err := query.Scan(&users).Error; err != nil {
		return nil, err
	}

	page := p.Page
	if p.Unpaginated() {
		page = 1
	}
	return &UserPage{
		Users:        users,
		TotalPages:   totalPages,
		Page:         page,
		TotalResults: total,
	}, nil
}

// FindByID returns the public projection for a user id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*PublicUser, error) {
	var user PublicUser
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select(publicColumns).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &user, nil
}

// FindByUsername returns the public projection for a username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*PublicUser, error) {
	var user PublicUser
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select(publicColumns).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &user, nil
}

// FindCredentials returns the full record including salt and hash.
// Only the authentication path may call this; the projection never
// reaches a response body.
func (r *UserRepository) FindCredentials(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if svcErr.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrUsernameNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create persists a new user and returns the public projection.
//
// The existence pre-check gives a clean error on the common path; the
// unique index decides concurrent races, surfacing as the same
// ErrUsernameTaken via the duplicate-key translation.
func (r *UserRepository) Create(ctx context.Context, user *db.User) (*PublicUser, error) {
	taken, err := r.usernameTaken(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, svcErr.ErrUsernameTaken
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, svcErr.Duplicate(err, svcErr.ErrUsernameTaken)
	}
	return r.FindByID(ctx, user.ID)
}

// Update applies a partial profile update and returns the fresh
// projection.
//
// Behavior:
//   - Fails ErrNotFound when the id does not exist.
//   - Re-checks uniqueness against the new username before applying;
//     the unique index is still the authority if a race slips past.
//   - Nil fields in the update are left unchanged.
func (r *UserRepository) Update(ctx context.Context, id string, update UserUpdate) (*PublicUser, error) {
	var existing db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		return nil, svcErr.Map(err)
	}

	if update.Username != nil {
		taken, err := r.usernameTaken(ctx, *update.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, svcErr.ErrUsernameTaken
		}
	}

	fields := map[string]interface{}{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.Salt != nil && update.Hash != nil {
		fields["salt"] = *update.Salt
		fields["hash"] = *update.Hash
	}

	if len(fields) > 0 {
		err := r.db.WithContext(ctx).
			Model(&db.User{}).
			Where("id = ?", id).
			Updates(fields).Error
		if err != nil {
			return nil, svcErr.Duplicate(err, svcErr.ErrUsernameTaken)
		}
	}

	return r.FindByID(ctx, id)
}

// Delete hard-deletes a user record. Relationship edges referencing the
// user are left in place.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return svcErr.ErrNotFound
	}
	return nil
}

func (r *UserRepository) usernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}
