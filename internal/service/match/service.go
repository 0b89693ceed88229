// Package match implements the matching engine: request submission,
// mutual-interest resolution, the discovery feed, and the connections /
// received-requests listings. It is the only writer of the
// ConnectionRequest and Connection ledgers.
package match

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/db"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/repository"
	"github.com/devtinder/api/internal/utils/pagination"
)

// Decisions a user can take on a candidate or a received request.
const (
	DecisionAccept = "accept"
	DecisionIgnore = "ignore"
)

// SubmitOutcome reports what a request submission resulted in.
type SubmitOutcome struct {
	// ConnectionEstablished is true when the target had already expressed
	// interest and the two requests collapsed into a Connection.
	ConnectionEstablished bool
	Message               string
}

// ReceivedRequest is a pending request joined with the requester's public
// profile for the received-requests listing.
type ReceivedRequest struct {
	FromUser  repository.SafeUser `json:"fromUser"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Service contains the matching business logic on top of the repositories.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	reqRepo  *repository.RequestRepository
	connRepo *repository.ConnectionRepository
}

// NewService creates the matching engine with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		reqRepo:  repository.NewRequestRepository(appCtx.DB),
		connRepo: repository.NewConnectionRepository(appCtx.DB),
	}
}

// SubmitRequest handles a user acting on a feed candidate.
//
// Behavior:
//   - decision "ignore": record a permanent ignore row. The target stops
//     resurfacing in the acting user's feed (and vice versa, since the feed
//     exclusion covers both sides of any ledger row). No Connection is made.
//   - decision "accept": inside one transaction, fail with Conflict if the
//     pair is already connected; if the target already has an outstanding
//     "interested" request toward the acting user, collapse both into a
//     Connection and delete every request between the pair; otherwise record
//     an "interested" request.
//
// A lost race on the connection insert (both sides accepting simultaneously)
// surfaces as a duplicate-key error and is reported as the already-connected
// Conflict, keeping the one-Connection-per-pair invariant intact.
func (s *Service) SubmitRequest(ctx context.Context, actingID, targetID uint64, decision string) (*SubmitOutcome, error) {
	s.appCtx.Logger.Debug("SubmitRequest called", "acting", actingID, "target", targetID, "decision", decision)

	if decision != DecisionAccept && decision != DecisionIgnore {
		return nil, svcErr.Validation("Invalid status type")
	}
	if actingID == targetID {
		return nil, svcErr.Validation("cannot send a request to yourself")
	}

	exists, err := s.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !exists {
		return nil, svcErr.NotFound("User not found")
	}

	if decision == DecisionIgnore {
		if err := s.reqRepo.Upsert(ctx, actingID, targetID, db.StatusIgnore); err != nil {
			return nil, svcErr.Map(err)
		}
		s.invalidateRequestCount(ctx, targetID)
		return &SubmitOutcome{
			Message: fmt.Sprintf("Request ignored from %d to %d", actingID, targetID),
		}, nil
	}

	var outcome *SubmitOutcome
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reqRepo := s.reqRepo.WithTx(tx)
		connRepo := s.connRepo.WithTx(tx)

		connected, err := connRepo.Exists(ctx, actingID, targetID)
		if err != nil {
			return err
		}
		if connected {
			return svcErr.Conflict("You are already connected!")
		}

		// did the target express interest first?
		_, err = reqRepo.FindInterested(ctx, targetID, actingID)
		switch {
		case err == nil:
			if err := connRepo.Create(ctx, actingID, targetID); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return svcErr.Conflict("You are already connected!")
				}
				return err
			}
			if err := reqRepo.DeleteBetween(ctx, actingID, targetID); err != nil {
				return err
			}
			outcome = &SubmitOutcome{
				ConnectionEstablished: true,
				Message:               fmt.Sprintf("Connection successfully established between %d and %d", actingID, targetID),
			}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := reqRepo.Upsert(ctx, actingID, targetID, db.StatusInterested); err != nil {
				return err
			}
			outcome = &SubmitOutcome{
				Message: fmt.Sprintf("Connection request sent from %d to %d", actingID, targetID),
			}
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.invalidateRequestCount(ctx, actingID)
	s.invalidateRequestCount(ctx, targetID)
	return outcome, nil
}

// ResolveReceivedRequest handles the receiving side acting on a pending
// request.
//
// The incoming request row is consumed (deleted) regardless of decision. On
// accept, a Connection is created unless one already exists. On ignore, a
// permanent ignore row acting -> requester is recorded so the requester also
// stops resurfacing in the acting user's feed; a transient discard would
// leave the pair rediscoverable.
func (s *Service) ResolveReceivedRequest(ctx context.Context, actingID, fromID uint64, decision string) (string, error) {
	s.appCtx.Logger.Debug("ResolveReceivedRequest called", "acting", actingID, "from", fromID, "decision", decision)

	if decision != DecisionAccept && decision != DecisionIgnore {
		return "", svcErr.Validation("Invalid status.")
	}

	var message string
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reqRepo := s.reqRepo.WithTx(tx)
		connRepo := s.connRepo.WithTx(tx)

		if err := reqRepo.Delete(ctx, fromID, actingID); err != nil {
			return err
		}

		if decision == DecisionAccept {
			connected, err := connRepo.Exists(ctx, actingID, fromID)
			if err != nil {
				return err
			}
			if !connected {
				if err := connRepo.Create(ctx, actingID, fromID); err != nil &&
					!errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
			}
			message = "Connection accepted and saved."
			return nil
		}

		if err := reqRepo.Upsert(ctx, actingID, fromID, db.StatusIgnore); err != nil {
			return err
		}
		message = "Connection ignored and request removed."
		return nil
	})
	if err != nil {
		return "", svcErr.Map(err)
	}

	s.invalidateRequestCount(ctx, actingID)
	return message, nil
}

// Feed returns a page of candidates for the acting user: everyone not
// already on either side of a request or connection involving them, public
// projection only, stable ascending-id order.
func (s *Service) Feed(ctx context.Context, actingID uint64, params pagination.Params) ([]repository.SafeUser, error) {
	params = params.Clamp()
	s.appCtx.Logger.Debug("Feed called", "acting", actingID, "page", params.Page, "limit", params.Limit)

	users, err := s.userRepo.Feed(ctx, actingID, params.Offset(), params.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	feed := make([]repository.SafeUser, 0, len(users))
	for _, u := range users {
		feed = append(feed, repository.Safe(u))
	}
	return feed, nil
}

// ListConnections returns the public profile of the other party for every
// connection involving the acting user.
func (s *Service) ListConnections(ctx context.Context, actingID uint64) ([]repository.SafeUser, error) {
	conns, err := s.connRepo.ListFor(ctx, actingID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	otherIDs := make([]uint64, 0, len(conns))
	for _, c := range conns {
		otherIDs = append(otherIDs, c.Other(actingID))
	}

	users, err := s.userRepo.ListByIDs(ctx, otherIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	byID := make(map[uint64]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	// preserve the ledger's ordering
	result := make([]repository.SafeUser, 0, len(conns))
	for _, c := range conns {
		if u, ok := byID[c.Other(actingID)]; ok {
			result = append(result, repository.Safe(u))
		}
	}
	return result, nil
}

// ListReceivedRequests returns pending "interested" requests addressed to
// the acting user, each joined with the requester's public profile.
func (s *Service) ListReceivedRequests(ctx context.Context, actingID uint64) ([]ReceivedRequest, error) {
	reqs, err := s.reqRepo.ListInterestedTo(ctx, actingID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	fromIDs := make([]uint64, 0, len(reqs))
	for _, r := range reqs {
		fromIDs = append(fromIDs, r.FromUserID)
	}

	users, err := s.userRepo.ListByIDs(ctx, fromIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	byID := make(map[uint64]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]ReceivedRequest, 0, len(reqs))
	for _, r := range reqs {
		if u, ok := byID[r.FromUserID]; ok {
			result = append(result, ReceivedRequest{
				FromUser:  repository.Safe(u),
				CreatedAt: r.CreatedAt,
			})
		}
	}
	return result, nil
}

// CountReceivedRequests returns how many pending requests the acting user
// has. Cache-first strategy:
//  1. Attempts to read from Redis (requests:count:userID).
//  2. On cache miss, falls back to the DB count.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountReceivedRequests(ctx context.Context, actingID uint64) (int64, error) {
	if cached, ok, _ := s.appCtx.RedisCache.GetRequestCount(ctx, actingID); ok {
		return cached, nil
	}

	count, err := s.reqRepo.CountInterestedTo(ctx, actingID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if err := s.appCtx.RedisCache.SetRequestCount(ctx, actingID, count); err != nil {
		s.appCtx.Logger.Warn("failed to cache request count",
			"user", strconv.FormatUint(actingID, 10), "err", err)
	}
	return count, nil
}

// invalidateRequestCount drops a user's cached pending count after a ledger
// write. Failure only means a stale count for up to the cache TTL.
func (s *Service) invalidateRequestCount(ctx context.Context, userID uint64) {
	if err := s.appCtx.RedisCache.InvalidateRequestCount(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate request count", "user", userID, "err", err)
	}
}
