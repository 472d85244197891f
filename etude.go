package main

import (
	"net/http"

	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type concreteStudyPayload struct {
	Designation string          `json:"designation" validate:"required"`
	Study       decimal.Decimal `json:"study"`
	Zone        string          `json:"zone" validate:"required,oneof=INFRA SUPER"`
}

type saveConcreteStudyRequest struct {
	Lines []concreteStudyPayload `json:"lines" validate:"required,dive"`
}

type steelStudyPayload struct {
	Designation string          `json:"designation" validate:"required"`
	AcierHA     decimal.Decimal `json:"acierHA"`
	AcierTS     decimal.Decimal `json:"acierTS"`
	Zone        string          `json:"zone" validate:"required,oneof=INFRA SUPER"`
}

type saveSteelStudyRequest struct {
	Lines []steelStudyPayload `json:"lines" validate:"required,dive"`
}

// getConcreteStudyHandler returns the study table aligned to the budget:
// one row per budget category, study quantity defaulting to 0 where the
// engineers have not filled one in yet.
func (a *app) getConcreteStudyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		byKey := map[string]decimal.Decimal{}
		for _, s := range wb.ConcreteStudy {
			byKey[s.Designation+"_"+string(s.Zone)] = s.Study
		}

		lines := make([]models.ConcreteStudyLine, 0, len(wb.Budget))
		for _, b := range wb.Budget {
			study, ok := byKey[b.Designation+"_"+string(b.Zone)]
			if !ok {
				study = decimal.Zero
			}
			lines = append(lines, models.ConcreteStudyLine{
				Designation: b.Designation,
				Study:       study,
				Zone:        b.Zone,
			})
		}
		c.JSON(http.StatusOK, gin.H{"lines": lines})
	}
}

func (a *app) saveConcreteStudyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var req saveConcreteStudyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lines := make([]models.ConcreteStudyLine, 0, len(req.Lines))
		for _, p := range req.Lines {
			lines = append(lines, models.ConcreteStudyLine{
				Designation: p.Designation,
				Study:       p.Study,
				Zone:        models.ParseZone(p.Zone),
			})
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		wb.ConcreteStudy = lines

		if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "saving etude failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lines": wb.ConcreteStudy})
	}
}

func (a *app) getSteelStudyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lines": wb.SteelStudy})
	}
}

func (a *app) saveSteelStudyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var req saveSteelStudyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lines := make([]models.SteelStudyLine, 0, len(req.Lines))
		for _, p := range req.Lines {
			lines = append(lines, models.SteelStudyLine{
				Designation: p.Designation,
				AcierHA:     p.AcierHA,
				AcierTS:     p.AcierTS,
				Zone:        models.ParseZone(p.Zone),
			})
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		wb.SteelStudy = lines

		if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "saving etude failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lines": wb.SteelStudy})
	}
}

func (a *app) addSteelStudyLineHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var p steelStudyPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}
		wb.SteelStudy = append(wb.SteelStudy, models.SteelStudyLine{
			Designation: p.Designation,
			AcierHA:     p.AcierHA,
			AcierTS:     p.AcierTS,
			Zone:        models.ParseZone(p.Zone),
		})

		if err := a.sites.SaveWorkbook(c.Request.Context(), site, wb, ver); err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "saving etude failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"lines": wb.SteelStudy})
	}
}
