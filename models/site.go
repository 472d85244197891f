package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/itb77/chantier_backend/storage"
)

// monthNames gives the pointage folder names (<Mois>-<year>).
var monthNames = map[time.Month]string{
	time.January: "Janvier", time.February: "Fevrier", time.March: "Mars",
	time.April: "Avril", time.May: "Mai", time.June: "Juin",
	time.July: "Juillet", time.August: "Aout", time.September: "Septembre",
	time.October: "Octobre", time.November: "Novembre", time.December: "Decembre",
}

// SiteService owns the per-site workbook lifecycle on the blob store. All
// writes go through the store's conditional-write path; a stale version is
// surfaced to the caller as storage.ErrConflict, never retried silently.
type SiteService struct {
	Store   storage.BlobStore
	BaseDir string
}

func NewSiteService(store storage.BlobStore, baseDir string) *SiteService {
	return &SiteService{Store: store, BaseDir: baseDir}
}

func (s *SiteService) WorkbookPath(site string) string {
	return fmt.Sprintf("%s/%s/%s.xlsx", s.BaseDir, site, site)
}

// ListSites lists the chantier folders under the base directory.
func (s *SiteService) ListSites(ctx context.Context) ([]string, error) {
	return s.Store.ListDirs(ctx, s.BaseDir)
}

// CreateSite initializes a new chantier workbook. When a template object
// exists at the store root it is copied verbatim (the foreman's preferred
// starting sheet); otherwise a fresh workbook with the standard budget grid
// is written. Fails with storage.ErrConflict if the site already exists.
func (s *SiteService) CreateSite(ctx context.Context, site string) error {
	if strings.TrimSpace(site) == "" || strings.Contains(site, "/") {
		return errors.New("invalid chantier name")
	}

	data, _, err := s.Store.Read(ctx, "template_itb77.xlsx")
	if err != nil {
		wb := NewWorkbook()
		wb.Budget, _ = SeedStandardItems(nil)
		data, err = EncodeWorkbook(wb)
		if err != nil {
			return err
		}
	}
	return s.Store.Write(ctx, s.WorkbookPath(site), data, 0)
}

// LoadWorkbook reads and decodes a site workbook together with its version
// token. storage.ErrNotFound passes through untouched: the zone page load
// treats it as a visible error, not as first use.
func (s *SiteService) LoadWorkbook(ctx context.Context, site string) (*Workbook, storage.Version, error) {
	data, ver, err := s.Store.Read(ctx, s.WorkbookPath(site))
	if err != nil {
		return nil, 0, err
	}
	wb, err := DecodeWorkbook(data)
	if err != nil {
		return nil, 0, err
	}
	return wb, ver, nil
}

// SaveWorkbook encodes and conditionally writes the workbook back.
func (s *SiteService) SaveWorkbook(ctx context.Context, site string, wb *Workbook, ver storage.Version) error {
	data, err := EncodeWorkbook(wb)
	if err != nil {
		return err
	}
	return s.Store.Write(ctx, s.WorkbookPath(site), data, ver)
}

// ArchiveScan stores the reviewed slip photo next to the workbook, named
// after the commit moment so successive scans never collide.
func (s *SiteService) ArchiveScan(ctx context.Context, site string, kind ReviewKind, ext string, data []byte) (string, error) {
	folder := "SCANS_BETON"
	if kind == ReviewAcier {
		folder = "SCANS_ACIER"
	}
	now := time.Now()
	cleanSite := strings.ReplaceAll(RemoveAccents(site), " ", "_")
	name := fmt.Sprintf("%s -- %s -- %s.%s",
		now.Format("02-01-2006"), cleanSite, now.Format("15-04-05"), strings.TrimPrefix(ext, "."))
	path := fmt.Sprintf("%s/%s/%s/%s", s.BaseDir, site, folder, name)

	if err := s.Store.WriteNew(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// CurrentPointageFolder returns the folder name for the current month.
func CurrentPointageFolder(now time.Time) string {
	return fmt.Sprintf("%s-%d", monthNames[now.Month()], now.Year())
}

func (s *SiteService) pointagePrefix(site string) string {
	return fmt.Sprintf("%s/%s/POINTAGES", s.BaseDir, site)
}

func (s *SiteService) ListPointageFolders(ctx context.Context, site string) ([]string, error) {
	return s.Store.ListDirs(ctx, s.pointagePrefix(site))
}

// CreatePointageFolder materializes a month folder with a marker object, the
// blob store having no real directories.
func (s *SiteService) CreatePointageFolder(ctx context.Context, site, folder string) error {
	path := fmt.Sprintf("%s/%s/.init", s.pointagePrefix(site), folder)
	return s.Store.Write(ctx, path, []byte{}, 0)
}

func (s *SiteService) ListPointagePhotos(ctx context.Context, site, folder string) ([]string, error) {
	files, err := s.Store.ListFiles(ctx, fmt.Sprintf("%s/%s", s.pointagePrefix(site), folder))
	if err != nil {
		return nil, err
	}
	photos := make([]string, 0, len(files))
	for _, f := range files {
		if f == ".init" {
			continue
		}
		photos = append(photos, f)
	}
	return photos, nil
}

func (s *SiteService) SavePointagePhoto(ctx context.Context, site, folder, name string, data []byte) error {
	if strings.Contains(name, "/") {
		return errors.New("invalid file name")
	}
	path := fmt.Sprintf("%s/%s/%s", s.pointagePrefix(site), folder, name)
	return s.Store.WriteNew(ctx, path, data)
}

func (s *SiteService) ReadPointagePhoto(ctx context.Context, site, folder, name string) ([]byte, error) {
	data, _, err := s.Store.Read(ctx, fmt.Sprintf("%s/%s/%s", s.pointagePrefix(site), folder, name))
	return data, err
}

func (s *SiteService) DeletePointagePhoto(ctx context.Context, site, folder, name string) error {
	return s.Store.Delete(ctx, fmt.Sprintf("%s/%s/%s", s.pointagePrefix(site), folder, name))
}
