// Package recordings implements the recording metadata index and the
// range-based media delivery endpoints.
package recordings

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/openroom/backend/internal/models"
	"github.com/openroom/backend/pkg/storage"
)

// Filter narrows a listing; empty fields match everything.
type Filter struct {
	RoomName    string
	RoomID      string
	RecordingID string
}

// Index derives recording records from sidecar blobs at query time. Nothing
// is cached; the blob store owns the bytes and this is only an in-memory
// projection per request.
type Index struct {
	store  storage.Store
	prefix string
	logger *zap.Logger
}

// NewIndex creates an index over sidecars stored under prefix.
func NewIndex(store storage.Store, prefix string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{store: store, prefix: prefix, logger: logger}
}

// List returns recordings matching f, newest first. A sidecar that cannot be
// read or parsed is logged and dropped; it never aborts the listing.
func (ix *Index) List(ctx context.Context, f Filter) ([]models.Recording, error) {
	keyStart := ix.prefix
	if f.RoomName != "" {
		keyStart = ix.prefix + f.RoomName + "-" + f.RoomID
	}
	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(keyStart) + `.*\.mp4\.json$`)
	if err != nil {
		return nil, fmt.Errorf("compile sidecar pattern: %w", err)
	}

	keys, err := ix.store.List(ctx, ix.prefix, pattern)
	if err != nil {
		return nil, fmt.Errorf("list sidecars: %w", err)
	}

	records := make([]models.Recording, 0, len(keys))
	for _, key := range keys {
		rec, err := ix.load(ctx, key)
		if err != nil {
			ix.logger.Warn("skipping unreadable sidecar", zap.Error(err), zap.String("key", key))
			continue
		}
		records = append(records, rec)
	}

	records = filterRecordings(records, f)
	sortNewestFirst(records)
	return records, nil
}

func (ix *Index) load(ctx context.Context, sidecarKey string) (models.Recording, error) {
	var sc models.Sidecar
	if err := ix.store.GetJSON(ctx, sidecarKey, &sc); err != nil {
		return models.Recording{}, err
	}
	if err := sc.Validate(); err != nil {
		return models.Recording{}, err
	}
	mediaKey := models.MediaKeyFor(sidecarKey)
	size, err := ix.store.HeadSize(ctx, mediaKey)
	if err != nil {
		return models.Recording{}, err
	}
	return sc.Recording(mediaKey, size), nil
}

func filterRecordings(records []models.Recording, f Filter) []models.Recording {
	if f.RoomName == "" && f.RoomID == "" && f.RecordingID == "" {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if f.RoomName != "" && r.RoomName != f.RoomName {
			continue
		}
		if f.RoomID != "" && r.RoomID != f.RoomID {
			continue
		}
		if f.RecordingID != "" && r.ID != f.RecordingID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortNewestFirst orders by startedAt descending. Ties break by name so that
// consecutive listings with no intervening writes are identical.
func sortNewestFirst(records []models.Recording) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].StartedAt != records[j].StartedAt {
			return records[i].StartedAt > records[j].StartedAt
		}
		return records[i].Name > records[j].Name
	})
}
