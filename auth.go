package main

import (
	"net/http"

	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// adminLoginHandler trades the admin password for a short-lived bearer
// token gating the pointage endpoints.
func (a *app) adminLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
			return
		}
		if req.Password != a.cfg.AdminPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "mot de passe incorrect"})
			return
		}

		token, err := utils.JwtGenerate(utils.RoleAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
