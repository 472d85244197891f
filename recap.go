package main

import (
	"fmt"
	"net/http"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/models/reports"
	"github.com/gin-gonic/gin"
)

// recapHandler recomputes budget-vs-actual from scratch on every call by
// replaying the concrete ledger against the current budget table. No
// incremental state survives between calls.
func (a *app) recapHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		lines, fondationDetails := models.Reconcile(wb.Concrete, wb.Budget, wb.ConcreteStudy)

		type recapLineResponse struct {
			models.RecapLine
			Active bool `json:"active"`
		}
		out := make([]recapLineResponse, 0, len(lines))
		for _, l := range lines {
			out = append(out, recapLineResponse{RecapLine: l, Active: l.Active()})
		}

		c.JSON(http.StatusOK, gin.H{
			"chantier":         site,
			"lines":            out,
			"fondationDetails": fondationDetails,
		})
	}
}

func (a *app) recapPDFHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		lines, _ := models.Reconcile(wb.Concrete, wb.Budget, wb.ConcreteStudy)
		pdfBytes, err := reports.BuildRecapPDF(site, lines)
		if err != nil {
			config.LogError(config.GetLogger(), "recap", "recapPDFHandler", site, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering pdf failed"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Recap_%s.pdf", models.RemoveAccents(site)))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}

func (a *app) exportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		lines, _ := models.Reconcile(wb.Concrete, wb.Budget, wb.ConcreteStudy)
		xlsxBytes, err := reports.BuildSiteExport(wb, lines)
		if err != nil {
			config.LogError(config.GetLogger(), "recap", "exportHandler", site, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering export failed"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Donnees_%s.xlsx", models.RemoveAccents(site)))
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsxBytes)
	}
}
