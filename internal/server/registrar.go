package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all route registrars. The auth
// middleware is passed in so each service decides which of its routes are
// gated.
type Registrar interface {
	Register(engine *gin.Engine, authMW gin.HandlerFunc)
}
