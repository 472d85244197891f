// site-init creates a chantier workbook directly in the blob store, without
// going through the API. Useful when provisioning a batch of sites before the
// foremen get access.
//
// Usage:
//   GCS_BUCKET=... GCS_CREDENTIALS_JSON=... go run ./cmd/site-init "Chantier Melun"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"bitbucket.org/itb77/chantier_backend/utils"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: site-init <chantier name> [more names...]")
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	var store storage.BlobStore
	var err error
	switch cfg.StorageProvider {
	case utils.StorageProviderMemory:
		store = storage.NewMemoryStore()
	default:
		store, err = storage.NewGCSStore(ctx, cfg.Bucket)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connecting to bucket %s failed: %v\n", cfg.Bucket, err)
			os.Exit(1)
		}
	}

	sites := models.NewSiteService(store, cfg.BaseDir)
	for _, name := range os.Args[1:] {
		if err := sites.CreateSite(ctx, name); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				fmt.Fprintf(os.Stderr, "%s: already exists, skipped\n", name)
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("%s: created at %s\n", name, sites.WorkbookPath(name))
	}
}
