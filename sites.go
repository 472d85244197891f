package main

import (
	"errors"
	"net/http"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/storage"
	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/gin-gonic/gin"
)

type createSiteRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

func (a *app) listSitesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sites, err := a.sites.ListSites(c.Request.Context())
		if err != nil {
			config.LogError(config.GetLogger(), "sites", "listSitesHandler", "list", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing chantiers failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"chantiers": sites})
	}
}

func (a *app) createSiteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSiteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		err := a.sites.CreateSite(c.Request.Context(), req.Name)
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "chantier already exists"})
				return
			}
			config.LogError(config.GetLogger(), "sites", "createSiteHandler", req.Name, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "creating chantier failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"chantier": req.Name})
	}
}

// siteHandler is the zone page load: the full typed workbook. A missing
// workbook is a visible 404 here, not an empty first-use table.
func (a *app) siteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": utils.ErrorUnknownSite.Error()})
				return
			}
			config.LogError(config.GetLogger(), "sites", "siteHandler", site, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "loading chantier failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"chantier":   site,
			"version":    ver,
			"beton":      wb.Concrete,
			"acier":      wb.Steel,
			"prev":       wb.Budget,
			"etudeBeton": wb.ConcreteStudy,
			"etudeAcier": wb.SteelStudy,
		})
	}
}
