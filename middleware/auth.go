package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/questionnaire-server/utils"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// AuthJWT kiểm tra Authorization: Bearer <token> và inject định danh người dùng vào context.
// Thiếu token → 401; token sai chữ ký, sai thuật toán hoặc hết hạn → 403.
func AuthJWT(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerToken(c.GetHeader("Authorization"))
		if rawToken == "" {
			abortWithMessage(c, http.StatusUnauthorized, utils.MsgTokenMissing)
			return
		}

		claims, err := issuer.VerifyToken(rawToken)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			abortWithMessage(c, http.StatusForbidden, utils.MsgTokenInvalid)
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}

// bearerToken tách token khỏi header; scheme không phân biệt hoa thường.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// CurrentUserID đọc user id do AuthJWT đặt vào context.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func abortWithMessage(c *gin.Context, status int, key string) {
	c.AbortWithStatusJSON(status, gin.H{"message": utils.T(GetLocale(c), key)})
}
