package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/services"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type QuestionnaireController struct {
	questionnaires *services.QuestionnaireService
}

func NewQuestionnaireController(questionnaires *services.QuestionnaireService) *QuestionnaireController {
	return &QuestionnaireController{questionnaires: questionnaires}
}

// POST /api/questionnaires
func (ctl *QuestionnaireController) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req dto.CreateQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, utils.MsgQuestionnaireInvalid)
		return
	}

	id, err := ctl.questionnaires.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         msg(c, utils.MsgQuestionnaireCreated),
		"questionnaireId": id,
	})
}

// GET /api/questionnaires: chỉ khảo sát của user hiện tại
func (ctl *QuestionnaireController) ListMine(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	list, err := ctl.questionnaires.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaires": list})
}

// GET /api/questionnaires/:id (public)
func (ctl *QuestionnaireController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := ctl.questionnaires.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaire": detail})
}

// DELETE /api/questionnaires/:id
func (ctl *QuestionnaireController) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := ctl.questionnaires.Delete(c.Request.Context(), id, uid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg(c, utils.MsgQuestionnaireDeleted)})
}
