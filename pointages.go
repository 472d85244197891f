package main

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"github.com/gin-gonic/gin"
)

type createPointageFolderRequest struct {
	Folder string `json:"folder"`
}

// listPointageFoldersHandler also suggests the current month folder so the
// client can preselect it even before it exists.
func (a *app) listPointageFoldersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		folders, err := a.sites.ListPointageFolders(c.Request.Context(), site)
		if err != nil {
			config.LogError(config.GetLogger(), "pointages", "listPointageFoldersHandler", site, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing pointages failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"folders": folders,
			"current": models.CurrentPointageFolder(time.Now()),
		})
	}
}

// createPointageFolderHandler defaults to the current month when the caller
// names no folder.
func (a *app) createPointageFolderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")

		var req createPointageFolderRequest
		_ = c.ShouldBindJSON(&req)
		folder := strings.TrimSpace(req.Folder)
		if folder == "" {
			folder = models.CurrentPointageFolder(time.Now())
		}
		if strings.Contains(folder, "/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder name"})
			return
		}

		if err := a.sites.CreatePointageFolder(c.Request.Context(), site, folder); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "folder already exists"})
				return
			}
			config.LogError(config.GetLogger(), "pointages", "createPointageFolderHandler", site, folder, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "creating folder failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"folder": folder})
	}
}

func (a *app) listPointagePhotosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		folder := c.Param("folder")
		photos, err := a.sites.ListPointagePhotos(c.Request.Context(), site, folder)
		if err != nil {
			config.LogError(config.GetLogger(), "pointages", "listPointagePhotosHandler", site, folder, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing photos failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"photos": photos})
	}
}

func (a *app) uploadPointagePhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		folder := c.Param("folder")

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
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}

		name := filepath.Base(fileHeader.Filename)
		if err := a.sites.SavePointagePhoto(c.Request.Context(), site, folder, name, data); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "photo already exists"})
				return
			}
			config.LogError(config.GetLogger(), "pointages", "uploadPointagePhotoHandler", site, name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "saving photo failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"photo": name})
	}
}

func (a *app) downloadPointagePhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		folder := c.Param("folder")
		name := c.Param("name")

		data, err := a.sites.ReadPointagePhoto(c.Request.Context(), site, folder, name)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
				return
			}
			config.LogError(config.GetLogger(), "pointages", "downloadPointagePhotoHandler", site, name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reading photo failed"})
			return
		}

		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (a *app) deletePointagePhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		site := c.Param("site")
		folder := c.Param("folder")
		name := c.Param("name")

		if err := a.sites.DeletePointagePhoto(c.Request.Context(), site, folder, name); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
				return
			}
			config.LogError(config.GetLogger(), "pointages", "deletePointagePhotoHandler", site, name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting photo failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": name})
	}
}
