package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/questionnaire-server/middleware"
	"github.com/vnkhanh/questionnaire-server/services"
)

type ExportController struct {
	export *services.ExportService
}

func NewExportController(export *services.ExportService) *ExportController {
	return &ExportController{export: export}
}

// GET /api/questionnaires/:id/export?format=csv|xlsx (owner)
func (ctl *ExportController) Export(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, err := ctl.export.Export(c.Request.Context(), id, uid, c.Query("format"), middleware.GetLocale(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
