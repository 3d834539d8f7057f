package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/questionnaire-server/middleware"
	"github.com/vnkhanh/questionnaire-server/services"
	"github.com/vnkhanh/questionnaire-server/utils"
)

var statusByCode = map[services.ErrorCode]int{
	services.ErrorInvalid:         http.StatusBadRequest,
	services.ErrorConflict:        http.StatusBadRequest,
	services.ErrorUnauthorized:    http.StatusUnauthorized,
	services.ErrorNotFound:        http.StatusNotFound,
	services.ErrorPersistence:     http.StatusInternalServerError,
	services.ErrorTooManyRequests: http.StatusTooManyRequests,
}

// msg dịch key theo locale của request.
func msg(c *gin.Context, key string) string {
	return utils.T(middleware.GetLocale(c), key)
}

// respondError ánh xạ lỗi service sang HTTP. Nguyên nhân nội bộ chỉ ghi log.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	key := utils.MsgInternalError
	if se, ok := services.AsServiceError(err); ok {
		if s, known := statusByCode[se.Code]; known {
			status = s
		}
		key = se.Key
	}

	if status >= http.StatusInternalServerError {
		uid, _ := middleware.CurrentUserID(c)
		log.Error().Err(err).
			Str("request_id", middleware.RequestID(c)).
			Str("route", c.FullPath()).
			Uint("user_id", uid).
			Msg("request failed")
		key = utils.MsgInternalError
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"message": msg(c, key)})
}

func badRequest(c *gin.Context, key string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg(c, key)})
}

// parseID đọc :id; trả false (và đã ghi 400) nếu không phải số dương.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, utils.MsgInvalidID)
		return 0, false
	}
	return uint(id), true
}

// userID: route đã qua AuthJWT nên luôn có user id; phòng khi route bị cấu hình sai thì trả 401.
func userID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msg(c, utils.MsgTokenMissing)})
	}
	return id, ok
}
