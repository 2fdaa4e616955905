package users

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/database/repo/accounts"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/utils"
	"github.com/gin-gonic/gin"
)

// Register POST /api/users/register
func (h *Handler) Register(c *gin.Context) {
	var form auth.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), form)
	if err != nil {
		var policyErr *auth.PasswordPolicyError
		switch {
		case errors.As(err, &policyErr):
			// 返回清空密码后的表单，便于客户端重新填写
			common.RespondErrorData(c, http.StatusBadRequest, policyErr.Error(), policyErr.Form)
		case errors.Is(err, auth.ErrInvalidForm):
			common.RespondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, accounts.ErrUsernameTaken):
			common.RespondError(c, http.StatusConflict, "Username already taken")
		default:
			log.Printf("[Auth] Failed to register %s: %v", utils.SanitizeLogUsername(form.Username), err)
			common.RespondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	common.RespondCreated(c, "Registration successful", user)
}
