package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/auth"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/server"
)

// Registrar ties the account routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the account service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the account routes. Sign-up, login and logout are open;
// profile routes are auth-gated.
func (r *Registrar) Register(engine *gin.Engine, authMW gin.HandlerFunc) {
	svc := NewService(r.appCtx)

	engine.POST("/sign-up", svc.handleSignUp)
	engine.POST("/login", svc.handleLogin)
	engine.POST("/logout", svc.handleLogout)
	engine.GET("/profile/view", authMW, svc.handleProfileView)
	engine.POST("/profile/edit", authMW, svc.handleProfileEdit)
}

type signUpRequest struct {
	FirstName string   `json:"firstName" binding:"required,min=3,max=64"`
	LastName  string   `json:"lastName" binding:"required,max=64"`
	Email     string   `json:"emailId" binding:"required,email"`
	Password  string   `json:"password" binding:"required"`
	Age       *int     `json:"age"`
	Gender    string   `json:"gender" binding:"required"`
	About     string   `json:"about"`
	Skills    []string `json:"skills"`
}

type loginRequest struct {
	Email    string `json:"emailId" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Service) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, svcErr.Validation("Enter a valid first name, last name, email and password"))
		return
	}

	user, err := s.SignUp(c.Request.Context(), SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Age:       req.Age,
		Gender:    req.Gender,
		About:     req.About,
		Skills:    req.Skills,
	})
	if err != nil {
		server.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, svcErr.Validation("Enter a valid email and password"))
		return
	}

	user, token, err := s.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.Error(c, err)
		return
	}

	auth.SetSessionCookie(c, s.appCtx.Config, token, int(s.appCtx.Tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Service) handleLogout(c *gin.Context) {
	auth.ClearSessionCookie(c, s.appCtx.Config)
	c.JSON(http.StatusOK, gin.H{"message": "User logged out successfully"})
}

func (s *Service) handleProfileView(c *gin.Context) {
	userID, _ := auth.UserID(c)

	user, err := s.Profile(c.Request.Context(), userID)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Service) handleProfileEdit(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req EditProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, svcErr.Validation("Invalid profile payload"))
		return
	}

	user, err := s.EditProfile(c.Request.Context(), userID, req)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
