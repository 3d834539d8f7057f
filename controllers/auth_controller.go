package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/services"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// POST /api/register
func (ctl *AuthController) Register(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, utils.MsgInvalidBody)
		return
	}

	res, err := ctl.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msg(c, utils.MsgRegisterSuccess),
		"token":   res.Token,
		"user":    res.User,
	})
}

// POST /api/login
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, utils.MsgInvalidBody)
		return
	}

	res, err := ctl.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msg(c, utils.MsgLoginSuccess),
		"token":   res.Token,
		"user":    res.User,
	})
}

// GET /api/user
func (ctl *AuthController) Me(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	user, err := ctl.auth.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
