package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/db"
)

// SafeUser is the public-safe projection of a profile: the fields other
// users are allowed to see. Never includes the email or credential hash.
type SafeUser struct {
	ID        uint64   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	PhotoURL  string   `json:"photoURL"`
	About     string   `json:"about"`
	Age       *int     `json:"age,omitempty"`
	Gender    string   `json:"gender"`
	Skills    []string `json:"skills"`
}

// Safe converts a full user record into its public projection.
func Safe(u db.User) SafeUser {
	return SafeUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		PhotoURL:  u.PhotoURL,
		About:     u.About,
		Age:       u.Age,
		Gender:    u.Gender,
		Skills:    u.Skills,
	}
}

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user. Emails are stored lowercase so uniqueness is
// case-insensitive; a duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail fetches a user by email, matching case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user id references an existing user.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ListByIDs fetches the users whose ids are in the given set. Missing ids
// are skipped silently.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint64) ([]db.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields applies an already allow-listed column map to a user row.
// The caller (profile edit) is responsible for validation and allow-listing.
func (r *UserRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Feed returns candidates for a user's discovery feed.
//
// Behavior:
//   - Excludes the user themselves.
//   - Excludes anyone on either side of any connection request involving the
//     user (outgoing interests, outgoing ignores, incoming interests).
//   - Excludes confirmed connections on either side.
//   - Ordered by id ascending so consecutive pages are stable: no candidate
//     repeats or gets skipped absent concurrent writes.
//
// The exclusion runs as NOT IN subqueries so candidate selection is a single
// round trip instead of materializing the exclusion set app-side.
func (r *UserRepository) Feed(ctx context.Context, userID uint64, offset, limit int) ([]db.User, error) {
	requestedByMe := r.db.
		Model(&db.ConnectionRequest{}).
		Select("to_user_id").
		Where("from_user_id = ?", userID)
	requestedMe := r.db.
		Model(&db.ConnectionRequest{}).
		Select("from_user_id").
		Where("to_user_id = ?", userID)
	connectedLo := r.db.
		Model(&db.Connection{}).
		Select("user_hi_id").
		Where("user_lo_id = ?", userID)
	connectedHi := r.db.
		Model(&db.Connection{}).
		Select("user_lo_id").
		Where("user_hi_id = ?", userID)

	var users []db.User
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", requestedByMe).
		Where("id NOT IN (?)", requestedMe).
		Where("id NOT IN (?)", connectedLo).
		Where("id NOT IN (?)", connectedHi).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
