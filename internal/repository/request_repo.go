package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devtinder/api/internal/db"
)

// RequestRepository provides data access methods for the ConnectionRequest
// ledger. All writes to the ledger go through here (or through a
// transaction-bound copy, see WithTx).
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new repository bound to the given DB connection.
func NewRequestRepository(database *gorm.DB) *RequestRepository {
	return &RequestRepository{db: database}
}

// WithTx returns a copy of the repository bound to a transaction handle, so
// multi-step ledger mutations can run all-or-nothing.
func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

// Upsert records a request from -> to with the given status.
//
// The composite PK on (from_user_id, to_user_id) means re-submitting toward
// the same target overwrites the row instead of accumulating duplicates.
func (r *RequestRepository) Upsert(ctx context.Context, fromID, toID uint64, status string) error {
	req := db.ConnectionRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     status,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&req).Error
}

// FindInterested looks up an outstanding "interested" request from -> to.
// Returns gorm.ErrRecordNotFound when none exists.
func (r *RequestRepository) FindInterested(ctx context.Context, fromID, toID uint64) (*db.ConnectionRequest, error) {
	var req db.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", fromID, toID, db.StatusInterested).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Delete removes the request from -> to, whatever its status. Deleting a row
// that does not exist is not an error: the request is simply consumed.
func (r *RequestRepository) Delete(ctx context.Context, fromID, toID uint64) error {
	return r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Delete(&db.ConnectionRequest{}).Error
}

// DeleteBetween removes all request rows between a pair, both directions.
// Called as cleanup once a pair resolves into a Connection.
func (r *RequestRepository) DeleteBetween(ctx context.Context, a, b uint64) error {
	return r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			a, b, b, a).
		Delete(&db.ConnectionRequest{}).Error
}

// ListInterestedTo returns every pending "interested" request addressed to
// the given user, newest first.
func (r *RequestRepository) ListInterestedTo(ctx context.Context, userID uint64) ([]db.ConnectionRequest, error) {
	var reqs []db.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, db.StatusInterested).
		Order("updated_at DESC, from_user_id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// CountInterestedTo counts pending "interested" requests addressed to the
// given user. Used as the DB fallback behind the Redis counter cache.
func (r *RequestRepository) CountInterestedTo(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ConnectionRequest{}).
		Where("to_user_id = ? AND status = ?", userID, db.StatusInterested).
		Count(&count).Error
	return count, err
}
