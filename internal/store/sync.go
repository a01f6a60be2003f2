package store

import (
	"context"
	"log/slog"

	"github.com/starford/daivaya/internal/archive"
)

// Sync walks the archive and brings the readings index up to date:
//   - new or changed documents are decoded and upserted
//   - rows whose document is gone are deleted
func Sync(ctx context.Context, db *DB, files archive.Provider, logger *slog.Logger) error {
	metas, err := files.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllReadingIDs(ctx)
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		data, err := files.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		r, err := archive.Decode(data)
		if err != nil {
			logger.Warn("sync: decode failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		onDisk[r.ID] = struct{}{}

		if checksums[r.ID] == m.Checksum {
			continue
		}
		if err := db.UpsertReading(ctx, ReadingRow{
			ID:        r.ID,
			UserID:    r.UserID,
			Kind:      r.Kind,
			Title:     r.Title,
			Checksum:  m.Checksum,
			CreatedAt: r.CreatedAt,
		}); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for id := range checksums {
		if _, ok := onDisk[id]; ok {
			continue
		}
		if err := db.DeleteReading(ctx, id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("id", id))
		}
	}
	return nil
}
