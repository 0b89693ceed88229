// Package chat is the messaging relay: it persists chat messages and
// republishes them on the recipient's live channel. Delivery is best-effort;
// subscribers connected at publish time get the message immediately, anyone
// else catches up by fetching the thread.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/db"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/repository"
)

// Service contains the relay logic on top of the message log and the
// live-channel publisher.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	msgRepo  *repository.MessageRepository
}

// NewService creates the messaging relay with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		msgRepo:  repository.NewMessageRepository(appCtx.DB),
	}
}

// Send persists a message and pushes it onto the recipient's live channel.
//
// Empty or whitespace-only content is rejected. The publish is best-effort:
// a failure is logged, not returned, because the message is already durable
// in the log and the recipient will see it on the next thread fetch.
func (s *Service) Send(ctx context.Context, senderID, receiverID uint64, content string) (*db.Message, error) {
	s.appCtx.Logger.Debug("Send called", "sender", senderID, "receiver", receiverID)

	if strings.TrimSpace(content) == "" {
		return nil, svcErr.Validation("message content cannot be empty")
	}
	if senderID == receiverID {
		return nil, svcErr.Validation("cannot message yourself")
	}

	exists, err := s.userRepo.Exists(ctx, receiverID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !exists {
		return nil, svcErr.NotFound("User not found")
	}

	msg := &db.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, svcErr.Map(err)
	}

	payload, err := json.Marshal(msg)
	if err == nil {
		channel := s.appCtx.RedisCache.ChannelForUser(receiverID)
		err = s.appCtx.RedisCache.Publish(ctx, channel, payload)
	}
	if err != nil {
		s.appCtx.Logger.Warn("live publish failed", "receiver", receiverID, "err", err)
	}

	return msg, nil
}

// Thread returns the conversation between two users, both directions,
// ordered by creation time ascending.
func (s *Service) Thread(ctx context.Context, a, b uint64) ([]db.Message, error) {
	msgs, err := s.msgRepo.Thread(ctx, a, b)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []db.Message{}, nil
		}
		return nil, svcErr.Map(err)
	}
	return msgs, nil
}
