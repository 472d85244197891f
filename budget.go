package main

import (
	"errors"
	"net/http"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type budgetLinePayload struct {
	Designation string          `json:"designation" validate:"required,min=1,max=120"`
	Planned     decimal.Decimal `json:"planned"`
	Zone        string          `json:"zone" validate:"required,oneof=INFRA SUPER"`
}

type replaceBudgetRequest struct {
	Lines []budgetLinePayload `json:"lines" validate:"required,dive"`
}

func (p budgetLinePayload) toLine() models.BudgetLine {
	return models.BudgetLine{
		Designation: p.Designation,
		Planned:     p.Planned,
		Zone:        models.ParseZone(p.Zone),
	}
}

// getBudgetHandler returns the Previsionnel table, running the standard-grid
// seeder first. A seed that actually adds rows is persisted right away so
// every later reader sees the full grid.
func (a *app) getBudgetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		seeded, changed := models.SeedStandardItems(wb.Budget)
		if changed {
			wb.Budget = seeded
			if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
				c.JSON(storeErrStatus(err), gin.H{"error": "saving seeded budget failed"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"lines": seeded})
	}
}

// addBudgetLineHandler appends one custom category outside the standard grid.
func (a *app) addBudgetLineHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var req budgetLinePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Planned.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "planned quantity must not be negative"})
			return
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		wb.Budget = append(wb.Budget, req.toLine())

		if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "workbook changed, refresh and retry"})
				return
			}
			config.LogError(config.GetLogger(), "budget", "addBudgetLineHandler", site, req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "saving budget failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"lines": wb.Budget})
	}
}

// replaceBudgetHandler is the full-table replace path: quantity edits and
// renames both go through here.
func (a *app) replaceBudgetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var req replaceBudgetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lines := make([]models.BudgetLine, 0, len(req.Lines))
		for _, p := range req.Lines {
			if p.Planned.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "planned quantity must not be negative"})
				return
			}
			lines = append(lines, p.toLine())
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		wb.Budget = lines

		if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "saving budget failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lines": wb.Budget})
	}
}
