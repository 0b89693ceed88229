package match_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/auth"
	"github.com/devtinder/api/internal/cache"
	"github.com/devtinder/api/internal/config"
	"github.com/devtinder/api/internal/db"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/service/match"
	"github.com/devtinder/api/internal/utils/pagination"
)

type fixture struct {
	svc *match.Service
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rc  *cache.RedisCache
}

// setupService spins up an in-memory SQLite DB, applies migrations, seeds
// users, starts a miniredis, and wires everything into a matching Service.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T, userCount int) fixture {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.ConnectionRequest{}, &db.Connection{}, &db.Message{}))

	for i := 1; i <= userCount; i++ {
		user := db.User{
			FirstName:    fmt.Sprintf("User%d", i),
			LastName:     "Dev",
			Email:        fmt.Sprintf("u%d@test.com", i),
			PasswordHash: "x",
			Gender:       db.GenderOther,
		}
		require.NoError(t, dbase.Create(&user).Error)
	}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(cfg, dbase, redisCache, logger, auth.NewTokenService(cfg))
	return fixture{svc: match.NewService(appCtx), db: dbase, mr: mr, rc: redisCache}
}

func countRequests(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&db.ConnectionRequest{}).Count(&n).Error)
	return n
}

func countConnections(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&db.Connection{}).Count(&n).Error)
	return n
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return svcErr.Status(err)
}

// TestSubmitThenMutualAccept walks the full happy path: A accepts B (request
// sent), then B accepts A (requests collapse into exactly one connection,
// ledger cleaned up).
func TestSubmitThenMutualAccept(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 3)

	out, err := f.svc.SubmitRequest(ctx, 1, 2, match.DecisionAccept)
	require.NoError(t, err)
	assert.False(t, out.ConnectionEstablished)
	assert.Equal(t, int64(1), countRequests(t, f.db))
	assert.Equal(t, int64(0), countConnections(t, f.db))

	out, err = f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)
	assert.True(t, out.ConnectionEstablished)

	assert.Equal(t, int64(0), countRequests(t, f.db), "requests must be consumed")
	assert.Equal(t, int64(1), countConnections(t, f.db), "exactly one connection for the pair")

	var conn db.Connection
	require.NoError(t, f.db.First(&conn).Error)
	assert.Equal(t, uint64(1), conn.UserLoID)
	assert.Equal(t, uint64(2), conn.UserHiID)
}

func TestSubmitToConnectedPairIsConflict(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 2)

	_, err := f.svc.SubmitRequest(ctx, 1, 2, match.DecisionAccept)
	require.NoError(t, err)
	_, err = f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)

	_, err = f.svc.SubmitRequest(ctx, 1, 2, match.DecisionAccept)
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))
	assert.Equal(t, int64(1), countConnections(t, f.db))
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 2)

	_, err := f.svc.SubmitRequest(ctx, 1, 99, match.DecisionAccept)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err), "nonexistent target")

	_, err = f.svc.SubmitRequest(ctx, 1, 2, "maybe")
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err), "unknown decision")

	_, err = f.svc.SubmitRequest(ctx, 1, 1, match.DecisionAccept)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err), "self target")
}

// TestIgnoreSuppressesBothFeeds records an ignore and checks the pair stops
// seeing each other: the ledger row hides the pair in both directions.
func TestIgnoreSuppressesBothFeeds(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 3)

	out, err := f.svc.SubmitRequest(ctx, 1, 2, match.DecisionIgnore)
	require.NoError(t, err)
	assert.False(t, out.ConnectionEstablished)
	assert.Equal(t, int64(0), countConnections(t, f.db))

	var req db.ConnectionRequest
	require.NoError(t, f.db.First(&req).Error)
	assert.Equal(t, db.StatusIgnore, req.Status)

	feed1, err := f.svc.Feed(ctx, 1, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed1, 1)
	assert.Equal(t, uint64(3), feed1[0].ID)

	feed2, err := f.svc.Feed(ctx, 2, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed2, 1)
	assert.Equal(t, uint64(3), feed2[0].ID)
}

func TestResolveReceivedRequestAccept(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 2)

	_, err := f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)

	msg, err := f.svc.ResolveReceivedRequest(ctx, 1, 2, match.DecisionAccept)
	require.NoError(t, err)
	assert.Contains(t, msg, "accepted")

	assert.Equal(t, int64(0), countRequests(t, f.db))
	assert.Equal(t, int64(1), countConnections(t, f.db))

	// accepting again must not create a second connection
	_, err = f.svc.ResolveReceivedRequest(ctx, 1, 2, match.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countConnections(t, f.db))
}

// TestResolveReceivedRequestIgnore verifies the unified ignore rule: the
// incoming request is consumed and replaced by a permanent ignore row, so
// the requester stays out of the resolver's feed.
func TestResolveReceivedRequestIgnore(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 3)

	_, err := f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)

	msg, err := f.svc.ResolveReceivedRequest(ctx, 1, 2, match.DecisionIgnore)
	require.NoError(t, err)
	assert.Contains(t, msg, "ignored")
	assert.Equal(t, int64(0), countConnections(t, f.db))

	var reqs []db.ConnectionRequest
	require.NoError(t, f.db.Find(&reqs).Error)
	require.Len(t, reqs, 1)
	assert.Equal(t, uint64(1), reqs[0].FromUserID)
	assert.Equal(t, uint64(2), reqs[0].ToUserID)
	assert.Equal(t, db.StatusIgnore, reqs[0].Status)

	feed, err := f.svc.Feed(ctx, 1, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, uint64(3), feed[0].ID)
}

func TestResolveInvalidDecision(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 2)

	_, err := f.svc.ResolveReceivedRequest(ctx, 1, 2, "block")
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
}

// TestFeedPaginationExactlyOnce: with a fixed candidate pool, walking the
// pages returns each eligible user exactly once, no omissions or repeats.
func TestFeedPaginationExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 10)

	seen := map[uint64]bool{}
	for page := 1; page <= 3; page++ {
		feed, err := f.svc.Feed(ctx, 1, pagination.Params{Page: page, Limit: 4})
		require.NoError(t, err)
		if page < 3 {
			assert.Len(t, feed, 4)
		} else {
			assert.Len(t, feed, 1)
		}
		for _, u := range feed {
			assert.False(t, seen[u.ID], "user %d returned twice", u.ID)
			assert.NotEqual(t, uint64(1), u.ID, "feed must not contain self")
			seen[u.ID] = true
		}
	}
	assert.Len(t, seen, 9)
}

func TestFeedReturnsSafeProjection(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 2)

	feed, err := f.svc.Feed(ctx, 1, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "User2", feed[0].FirstName)
	// SafeUser has no email or credential field at all; spot-check the shape
	assert.NotZero(t, feed[0].ID)
}

func TestListConnectionsReturnsOtherParty(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 3)

	_, err := f.svc.SubmitRequest(ctx, 1, 2, match.DecisionAccept)
	require.NoError(t, err)
	_, err = f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)

	conns, err := f.svc.ListConnections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, uint64(2), conns[0].ID)

	conns, err = f.svc.ListConnections(ctx, 2)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, uint64(1), conns[0].ID)
}

func TestListReceivedRequests(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 4)

	_, err := f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)
	_, err = f.svc.SubmitRequest(ctx, 3, 1, match.DecisionAccept)
	require.NoError(t, err)
	_, err = f.svc.SubmitRequest(ctx, 4, 1, match.DecisionIgnore)
	require.NoError(t, err)

	reqs, err := f.svc.ListReceivedRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reqs, 2, "ignore rows are not pending requests")

	got := map[uint64]bool{}
	for _, r := range reqs {
		got[r.FromUser.ID] = true
	}
	assert.True(t, got[2])
	assert.True(t, got[3])
}

// TestCountReceivedRequestsCache verifies the cache-first counter: DB
// fallback populates Redis, subsequent reads hit the cache, and ledger
// writes invalidate it.
func TestCountReceivedRequestsCache(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, 3)

	_, err := f.svc.SubmitRequest(ctx, 2, 1, match.DecisionAccept)
	require.NoError(t, err)

	count, err := f.svc.CountReceivedRequests(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// cached now: a value planted in Redis wins over the DB
	require.NoError(t, f.mr.Set(f.rc.KeyForRequestCount(1), "7"))
	count, err = f.svc.CountReceivedRequests(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	// a new ledger write drops the stale entry
	_, err = f.svc.SubmitRequest(ctx, 3, 1, match.DecisionAccept)
	require.NoError(t, err)
	count, err = f.svc.CountReceivedRequests(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
