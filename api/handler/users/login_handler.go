package users

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/utils"
	"github.com/gin-gonic/gin"
)

type loginRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
}

// Login POST /api/users/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("[Auth] Login failed for %s: %v", utils.SanitizeLogUsername(req.Username), err)
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(c, result.Token, int(time.Until(result.ExpiresAt).Seconds()))

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt.Unix(),
		UserID:      result.Identity.UserID,
		Username:    result.Identity.Username,
	})
}

// Logout POST /api/users/logout
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		common.RespondSuccessMessage(c, "Already logged out or session invalid", nil)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil && !errors.Is(err, auth.ErrUnauthenticated) {
		log.Printf("[Auth] Failed to remove session: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	h.setSessionCookie(c, "", -1)
	common.RespondSuccessMessage(c, "Logout successful", nil)
}

// setSessionCookie maxAge 为负时删除 Cookie
func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
