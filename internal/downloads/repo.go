// Package downloads exports finished sheets and keeps the per-user download
// history.
package downloads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const StatusOK = "Ok"

var ErrNotFound = errors.New("download not found")

// Download is one exported sheet. Snapshot is the exported (Key, Valor
// Final) list as JSON.
type Download struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	TemplateLanguage string    `json:"template_language"`
	CDSIdentifier    string    `json:"cds_identifier"`
	Status           string    `json:"status"`
	Snapshot         string    `json:"-"`
	DownloadedAt     time.Time `json:"downloaded_at"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, d Download) error {
	if d.Status == "" {
		d.Status = StatusOK
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO downloads (id, user_id, template_language, cds_identifier, status, exported_data_snapshot, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.UserID, d.TemplateLanguage, d.CDSIdentifier, d.Status, d.Snapshot, d.DownloadedAt)
	if err != nil {
		return fmt.Errorf("create download: %w", err)
	}
	return nil
}

func (r *Repo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloads WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count downloads: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's downloads, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Download, error) {
	return r.list(ctx, `WHERE user_id = ?`, userID)
}

// ListAll returns every download, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Download, error) {
	return r.list(ctx, "")
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]Download, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, template_language, cds_identifier, status, exported_data_snapshot, downloaded_at
		FROM downloads
		`+where+`
		ORDER BY downloaded_at DESC, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	out := make([]Download, 0)
	for rows.Next() {
		var d Download
		if err := rows.Scan(&d.ID, &d.UserID, &d.TemplateLanguage, &d.CDSIdentifier, &d.Status, &d.Snapshot, &d.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	return out, nil
}

// UpdateStatus changes the status of one of the user's own downloads.
func (r *Repo) UpdateStatus(ctx context.Context, id, userID, status string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE downloads SET status = ? WHERE id = ? AND user_id = ?
	`, status, id, userID)
	if err != nil {
		return fmt.Errorf("update download status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
