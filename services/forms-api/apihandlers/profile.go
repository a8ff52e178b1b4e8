package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	mw "github.com/finnscodingadventure/digilizeforms/pkg/apihelpers/middlewares"
	userDB "github.com/finnscodingadventure/digilizeforms/pkg/db/users"
	userTypes "github.com/finnscodingadventure/digilizeforms/pkg/user-management/types"
)

func (h *HttpEndpoints) AddProfileAPI(rg *gin.RouterGroup) {
	profileGroup := rg.Group("/profile")
	profileGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		profileGroup.GET("", h.getProfile)
		profileGroup.PUT("", mw.RequirePayload(), h.updateProfile)
	}
}

// loadOrRepairProfile returns the user's profile row, creating it from
// the account record when it is missing.
func (h *HttpEndpoints) loadOrRepairProfile(userID string) (*userTypes.Profile, error) {
	profile, err := h.userDBConn.GetProfileByID(userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := h.userDBConn.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	profile = &userTypes.Profile{
		ID:    userID,
		Name:  user.Account.DisplayName,
		Email: user.Account.Email,
	}
	if err := h.userDBConn.CreateProfile(*profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (h *HttpEndpoints) getProfile(c *gin.Context) {
	profile, err := h.loadOrRepairProfile(h.ownerID(c))
	if err != nil {
		if errors.Is(err, userDB.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		slog.Error("failed to fetch profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type UpdateProfileReq struct {
	Name string `json:"name"`
}

// updateProfile changes the user's display name on both the profile row
// and the account record.
func (h *HttpEndpoints) updateProfile(c *gin.Context) {
	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
		return
	}

	userID := h.ownerID(c)
	profile, err := h.loadOrRepairProfile(userID)
	if err != nil {
		if errors.Is(err, userDB.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		slog.Error("failed to fetch profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	profile.Name = req.Name
	if err := h.userDBConn.UpdateProfile(*profile); err != nil {
		slog.Error("failed to update profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	user, err := h.userDBConn.GetUserByID(userID)
	if err == nil {
		user.Account.DisplayName = req.Name
		if _, err := h.userDBConn.ReplaceUser(user); err != nil {
			slog.Warn("failed to update account display name", slog.String("userID", userID), slog.String("error", err.Error()))
		}
	}

	slog.Info("profile updated", slog.String("userID", userID))
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
