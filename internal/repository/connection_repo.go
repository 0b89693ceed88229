package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/db"
)

// ConnectionRepository provides data access methods for the confirmed
// connection ledger.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new repository bound to the given DB connection.
func NewConnectionRepository(database *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: database}
}

// WithTx returns a copy bound to a transaction handle.
func (r *ConnectionRepository) WithTx(tx *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: tx}
}

// Create records a confirmed connection for the unordered pair {a, b}.
//
// The pair is stored sorted under a composite PK, so a concurrent duplicate
// insert fails with gorm.ErrDuplicatedKey. Callers treat that as the
// "already connected" outcome rather than an internal failure.
func (r *ConnectionRepository) Create(ctx context.Context, a, b uint64) error {
	lo, hi := db.NormalizePair(a, b)
	conn := db.Connection{UserLoID: lo, UserHiID: hi}
	return r.db.WithContext(ctx).Create(&conn).Error
}

// Exists reports whether the unordered pair {a, b} is already connected.
func (r *ConnectionRepository) Exists(ctx context.Context, a, b uint64) (bool, error) {
	lo, hi := db.NormalizePair(a, b)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Connection{}).
		Where("user_lo_id = ? AND user_hi_id = ?", lo, hi).
		Count(&count).Error
	return count > 0, err
}

// ListFor returns every connection involving the given user.
func (r *ConnectionRepository) ListFor(ctx context.Context, userID uint64) ([]db.Connection, error) {
	var conns []db.Connection
	err := r.db.WithContext(ctx).
		Where("user_lo_id = ? OR user_hi_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}
