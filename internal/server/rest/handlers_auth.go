package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

// tokenResponse is the envelope returned by every token-issuing endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       *string   `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toUserResponse strips fields that must never reach clients, the password
// hash above all.
func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type registerRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    *string `json:"email"`
	Password string  `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "username and password are required",
		})
		return
	}

	user, token, err := s.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin accepts both a JSON body and a classic form post, so browser
// clients and CLI tools can share the endpoint.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, errorBody{
				Code:    "VALIDATION_FAILED",
				Message: "username and password are required",
			})
			return
		}
	} else {
		req.Username = c.PostForm("username")
		req.Password = c.PostForm("password")
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "username and password are required",
		})
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	})
}

type clientCredentialsRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

func (s *Server) handleClientCredentials(c *gin.Context) {
	var req clientCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "client_id and client_secret are required",
		})
		return
	}

	token, err := s.users.ExchangeClientCredentials(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    req.ClientID,
	})
}

func (s *Server) handleGetMe(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), principal(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

type updateMeRequest struct {
	Email           *string `json:"email"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

func (s *Server) handleUpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "invalid request body",
		})
		return
	}

	user, err := s.users.UpdateProfile(c.Request.Context(), principal(c), req.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) handleRefresh(c *gin.Context) {
	p := principal(c)
	token, err := s.users.Refresh(c.Request.Context(), p)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    p.Name,
		IsSuperuser: p.IsSuperuser,
	})
}

// handleLogout acknowledges the logout. Tokens are stateless, so there is
// nothing to revoke server-side; clients discard the token and it ages out.
func (s *Server) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

type createClientRequest struct {
	Name string `json:"name" binding:"required"`
}

type clientResponse struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// handleCreateClient returns the plaintext secret in this response only;
// it is not recoverable afterwards.
func (s *Server) handleCreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.ErrValidation)
		return
	}

	client, secret, err := s.users.CreateAPIClient(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clientResponse{
		ClientID:     client.ClientID,
		ClientSecret: secret,
		Name:         client.Name,
		CreatedAt:    client.CreatedAt,
	})
}
