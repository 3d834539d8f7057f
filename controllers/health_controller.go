package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// GET /health
func (ctl *HealthController) Check(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status": "ok",
		"db":     "ok",
	}

	// Lỗi driver chỉ ghi log, client nhận chuỗi cố định
	sqlDB, err := ctl.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("health: cannot get DB instance")
		response["status"] = "error"
		response["db"] = "error: cannot get DB instance"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// Thử ping database
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("health: cannot connect to DB")
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
