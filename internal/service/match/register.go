package match

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/auth"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/server"
	"github.com/devtinder/api/internal/utils/pagination"
)

// Registrar ties the matching engine routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the matching engine.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the matching routes. Every route is auth-gated.
func (r *Registrar) Register(engine *gin.Engine, authMW gin.HandlerFunc) {
	svc := NewService(r.appCtx)

	engine.POST("/request/send/:status/:toUserId", authMW, svc.handleSendRequest)
	// "recieve" spelling is what the client calls
	engine.POST("/request/recieve/:status/:fromUserId", authMW, svc.handleReceiveRequest)
	engine.GET("/requests/received", authMW, svc.handleListReceived)
	engine.GET("/requests/received/count", authMW, svc.handleCountReceived)
	engine.GET("/connections", authMW, svc.handleListConnections)
	engine.GET("/feed", authMW, svc.handleFeed)
}

func pathUserID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation(name + " must be a valid user id")
	}
	return id, nil
}

func (s *Service) handleSendRequest(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	targetID, err := pathUserID(c, "toUserId")
	if err != nil {
		server.Error(c, err)
		return
	}

	outcome, err := s.SubmitRequest(c.Request.Context(), actingID, targetID, c.Param("status"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":               outcome.Message,
		"connectionEstablished": outcome.ConnectionEstablished,
	})
}

func (s *Service) handleReceiveRequest(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	fromID, err := pathUserID(c, "fromUserId")
	if err != nil {
		server.Error(c, err)
		return
	}

	message, err := s.ResolveReceivedRequest(c.Request.Context(), actingID, fromID, c.Param("status"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (s *Service) handleListReceived(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	reqs, err := s.ListReceivedRequests(c.Request.Context(), actingID)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connectionRequests": reqs})
}

func (s *Service) handleCountReceived(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	count, err := s.CountReceivedRequests(c.Request.Context(), actingID)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Service) handleListConnections(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	conns, err := s.ListConnections(c.Request.Context(), actingID)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (s *Service) handleFeed(c *gin.Context) {
	actingID, _ := auth.UserID(c)

	params := pagination.Parse(c.Query("page"), c.Query("limit"))
	feed, err := s.Feed(c.Request.Context(), actingID, params)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
