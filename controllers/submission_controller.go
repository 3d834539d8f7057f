package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/middleware"
	"github.com/vnkhanh/questionnaire-server/services"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type SubmissionController struct {
	submissions *services.SubmissionService
}

func NewSubmissionController(submissions *services.SubmissionService) *SubmissionController {
	return &SubmissionController{submissions: submissions}
}

// POST /api/questionnaires/:id/submit
func (ctl *SubmissionController) Submit(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, utils.MsgInvalidBody)
		return
	}

	submissionID, err := ctl.submissions.Submit(c.Request.Context(), id, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      msg(c, utils.MsgSubmissionCreated),
		"submissionId": submissionID,
	})
}

// GET /api/questionnaires/:id/answers (owner)
func (ctl *SubmissionController) ListAnswers(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	views, err := ctl.submissions.ListWithAnswers(c.Request.Context(), id, uid, middleware.GetLocale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": views})
}

// GET /api/user/questionnaires: các khảo sát user đã trả lời
func (ctl *SubmissionController) ListAnswered(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	list, err := ctl.submissions.ListAnsweredBy(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaires": list})
}
