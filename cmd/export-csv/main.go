package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"homologation/internal/downloads"
	"homologation/pkg/database"
)

func main() {
	var (
		out    = flag.String("out", "data/downloads.csv", "output CSV path for the download history")
		dbPath = flag.String("db", "", "database path (defaults to HOMOLOG_DB_PATH or ~/.homologation/data.db)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := database.DefaultConfig()
	if *dbPath != "" {
		cfg.Path = *dbPath
	}
	db := database.MustOpen(cfg)
	defer db.Close()

	list, err := downloads.NewRepo(db).ListAll(ctx)
	if err != nil {
		log.Fatalf("list downloads failed: %v", err)
	}
	if err := exportDownloads(*out, list); err != nil {
		log.Fatalf("export downloads failed: %v", err)
	}

	log.Printf("exported %d downloads to %s", len(list), *out)
}

func exportDownloads(outPath string, list []downloads.Download) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeDownloads(f, list)
}

func writeDownloads(dst io.Writer, list []downloads.Download) error {
	w := csv.NewWriter(dst)
	if err := w.Write([]string{"id", "user_id", "template_language", "cds_identifier", "status", "downloaded_at", "exported_data_snapshot"}); err != nil {
		return err
	}

	for _, d := range list {
		if err := w.Write([]string{
			d.ID,
			d.UserID,
			d.TemplateLanguage,
			d.CDSIdentifier,
			d.Status,
			d.DownloadedAt.UTC().Format(time.RFC3339),
			d.Snapshot,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
