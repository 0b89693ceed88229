package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/db"
)

// MessageRepository provides data access for the immutable message log.
// Messages are created once and never updated or deleted.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create persists a message.
func (r *MessageRepository) Create(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// Thread returns the conversation between two users: both directions,
// non-empty content only, ordered by creation time ascending.
func (r *MessageRepository) Thread(ctx context.Context, a, b uint64) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND content <> ''",
			a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
