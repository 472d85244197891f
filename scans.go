package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/gin-gonic/gin"
)

var scanExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func scanInstruction(kind models.ReviewKind) string {
	if kind == models.ReviewAcier {
		return "Donnees acier JSON."
	}
	return "Donnees beton JSON."
}

// createScanHandler runs the whole pre-review pipeline synchronously: photo
// normalization, external extraction, ditto-mark repair and budget matching.
// The resulting batch lives in memory until commit or discard; nothing is
// persisted here.
func (a *app) createScanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		site := c.Param("site")

		kind := models.ReviewKind(strings.ToLower(c.PostForm("kind")))
		if kind != models.ReviewBeton && kind != models.ReviewAcier {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be beton or acier"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > a.cfg.MaxScanSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !scanExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type (jpg/png)"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}

		imageData, mimeType, err := utils.NormalizeScanImage(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
			return
		}

		// Budget needed for matching; missing workbook is a visible error.
		wb, _, err := a.sites.LoadWorkbook(c.Request.Context(), site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.ExtractTimeout)
		defer cancel()
		rows, err := a.extractor.Extract(ctx, imageData, mimeType, models.ScanColumns(kind), scanInstruction(kind))
		if err != nil {
			config.LogError(logger, "scans", "createScanHandler", site, nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "analyse du bon impossible, reessayez"})
			return
		}

		batch := models.BuildReviewBatch(site, kind, rows, wb.Budget)
		batch.ImageData = imageData
		batch.ImageExt = "jpg"
		a.reviews.Put(batch)

		c.JSON(http.StatusCreated, batch)
	}
}

func (a *app) getReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		batch, ok := a.reviews.Get(c.Param("batchId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "review batch not found"})
			return
		}
		c.JSON(http.StatusOK, batch)
	}
}

type updateReviewRequest struct {
	Rows []models.ReviewRow `json:"rows"`
}

// updateReviewHandler replaces the pending rows with the reviewer's edits.
// Editing a row is also how a human clears its Doute flag.
func (a *app) updateReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		batch, ok := a.reviews.Get(c.Param("batchId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "review batch not found"})
			return
		}

		var req updateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		batch.Rows = req.Rows
		a.reviews.Put(batch)
		c.JSON(http.StatusOK, batch)
	}
}

// commitReviewHandler appends the confirmed rows to the ledger sheet and
// archives the slip photo. The workbook is re-read here so the write carries
// a fresh version token; a conflict keeps the batch alive so the reviewer's
// edits survive a refresh-and-redo.
func (a *app) commitReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		batch, ok := a.reviews.Get(c.Param("batchId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "review batch not found"})
			return
		}

		wb, ver, err := a.sites.LoadWorkbook(c.Request.Context(), batch.Site)
		if err != nil {
			c.JSON(storeErrStatus(err), gin.H{"error": "loading chantier failed"})
			return
		}

		if batch.Kind == models.ReviewAcier {
			wb.Steel = append(wb.Steel, batch.SteelEntries()...)
		} else {
			wb.Concrete = append(wb.Concrete, batch.ConcreteEntries()...)
		}

		if err := a.sites.SaveWorkbook(c.Request.Context(), batch.Site, wb, ver); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "workbook changed, refresh and retry"})
				return
			}
			config.LogError(logger, "scans", "commitReviewHandler", batch.Site, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "saving ledger failed"})
			return
		}

		if len(batch.ImageData) > 0 {
			if _, err := a.sites.ArchiveScan(c.Request.Context(), batch.Site, batch.Kind, batch.ImageExt, batch.ImageData); err != nil {
				// The ledger append already succeeded; losing the archive
				// copy is logged, not surfaced.
				config.LogError(logger, "scans", "commitReviewHandler", "archive "+batch.Site, nil, err)
			}
		}

		a.reviews.Delete(batch.ID)
		c.JSON(http.StatusOK, gin.H{"committed": len(batch.Rows)})
	}
}

// discardReviewHandler drops a pending batch. Pure local reset, the
// persisted ledger is untouched.
func (a *app) discardReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.reviews.Delete(c.Param("batchId"))
		c.JSON(http.StatusOK, gin.H{"discarded": true})
	}
}
