package apihandlers

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/finnscodingadventure/digilizeforms/pkg/apihelpers/middlewares"
	jwthandling "github.com/finnscodingadventure/digilizeforms/pkg/jwt-handling"
	"github.com/finnscodingadventure/digilizeforms/pkg/session"
)

func (h *HttpEndpoints) AddAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", mw.RequirePayload(), h.loginWithEmail)
		authGroup.POST("/signup", mw.RequirePayload(), h.signupWithEmail)
		authGroup.GET("/token/validate", mw.GetAndValidateUserJWT(h.tokenSignKey), h.validateToken)
		authGroup.GET("/token/renew", mw.GetAndValidateUserJWT(h.tokenSignKey), h.renewToken)
		authGroup.POST("/logout", mw.GetAndValidateUserJWT(h.tokenSignKey), h.logout)
	}
}

// randomWait adds a random delay to failed login paths so that timing
// does not leak whether the email exists.
func randomWait(minTimeSec int, maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec-minTimeSec)+minTimeSec) * time.Second)
}

type LoginWithEmailReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) loginWithEmail(c *gin.Context) {
	var req LoginWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email == "" || req.Password == "" {
		slog.Error("missing required fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	userSession, err := h.authGateway.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login attempt failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		randomWait(5, 10)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	// lazily repair a missing profile row, never blocking the login
	if err := h.authGateway.EnsureProfile(c.Request.Context(), userSession.UserID, userSession.DisplayName, userSession.Email); err != nil {
		slog.Warn("failed to ensure profile", slog.String("userID", userSession.UserID), slog.String("error", err.Error()))
	}

	slog.Info("login successful", slog.String("userID", userSession.UserID))

	c.JSON(http.StatusOK, gin.H{
		"token":     userSession.Token,
		"expiresIn": h.tokenExpiresIn.Seconds(),
		"user": gin.H{
			"id":          userSession.UserID,
			"email":       userSession.Email,
			"displayName": userSession.DisplayName,
		},
	})
}

type SignupWithEmailReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (h *HttpEndpoints) signupWithEmail(c *gin.Context) {
	var req SignupWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.authGateway.CreateAccount(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidEmail), errors.Is(err, session.ErrWeakPassword):
			slog.Error("signup with invalid credentials", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, session.ErrAccountExists):
			slog.Warn("signup attempt with existing email", slog.String("email", req.Email))
			randomWait(2, 5)
			c.JSON(http.StatusConflict, gin.H{"error": "account could not be created"})
		default:
			slog.Error("failed to create user", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	slog.Info("new user created", slog.String("userID", id))

	// the account is created but not logged in; the client has to go
	// through the login flow afterwards
	c.JSON(http.StatusCreated, gin.H{"message": "account created"})
}

func (h *HttpEndpoints) validateToken(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)
	c.JSON(http.StatusOK, gin.H{
		"tokenInfos": gin.H{
			"sub":     token.Subject,
			"email":   token.Email,
			"isAdmin": token.IsAdmin,
		},
	})
}

func (h *HttpEndpoints) renewToken(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)

	newToken, err := jwthandling.GenerateNewUserToken(
		h.tokenExpiresIn,
		token.Subject,
		token.Email,
		token.IsAdmin,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     newToken,
		"expiresIn": h.tokenExpiresIn.Seconds(),
	})
}

// logout is intentionally server-side stateless: the token stays valid
// until it expires, the client drops its copy.
func (h *HttpEndpoints) logout(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)
	slog.Info("user logged out", slog.String("userID", token.Subject))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
