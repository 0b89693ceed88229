package chat

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/auth"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/server"
)

// Registrar ties the messaging routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the messaging relay.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the messaging routes. All of them are auth-gated,
// including the thread fetch.
func (r *Registrar) Register(engine *gin.Engine, authMW gin.HandlerFunc) {
	svc := NewService(r.appCtx)

	engine.GET("/messages/stream", authMW, svc.handleStream)
	engine.POST("/messages/send", authMW, svc.handleSend)
	engine.GET("/messages/:userId/:otherUserId", authMW, svc.handleThread)
}

type sendRequest struct {
	ReceiverID uint64 `json:"receiverId" binding:"required"`
	Content    string `json:"content"`
}

func (s *Service) handleSend(c *gin.Context) {
	senderID, _ := auth.UserID(c)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, svcErr.Validation("receiverId and content are required"))
		return
	}

	msg, err := s.Send(c.Request.Context(), senderID, req.ReceiverID, req.Content)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// handleThread serves GET /messages/:userId/:otherUserId. The caller must be
// the :userId participant; reading someone else's thread is forbidden.
func (s *Service) handleThread(c *gin.Context) {
	callerID, _ := auth.UserID(c)

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		server.Error(c, svcErr.Validation("userId must be a valid user id"))
		return
	}
	otherID, err := strconv.ParseUint(c.Param("otherUserId"), 10, 64)
	if err != nil {
		server.Error(c, svcErr.Validation("otherUserId must be a valid user id"))
		return
	}
	if callerID != userID {
		server.Error(c, svcErr.Forbidden("you can only read your own conversations"))
		return
	}

	msgs, err := s.Thread(c.Request.Context(), userID, otherID)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// handleStream serves the live channel as server-sent events. Each published
// message for the caller arrives as an SSE "message" event. There is no
// replay: anything published while disconnected must be fetched via the
// thread endpoint.
func (s *Service) handleStream(c *gin.Context) {
	userID, _ := auth.UserID(c)

	ctx := c.Request.Context()
	channel := s.appCtx.RedisCache.ChannelForUser(userID)
	sub := s.appCtx.RedisCache.Subscribe(ctx, channel)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	events := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("message", msg.Payload)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
