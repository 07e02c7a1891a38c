package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/repository"
)

const perPage = 50

// SyncService imports the upstream catalog into the local novels table.
// Pages are fetched sequentially to respect upstream paging; the per-novel
// upserts fan out over the worker pool.
type SyncService struct {
	client    *Client
	novelRepo repository.NovelRepository
	pool      *WorkerPool
	source    string
	logger    *slog.Logger
}

type SyncStats struct {
	Pages    int
	Imported int64
	Failed   int64
}

func NewSyncService(client *Client, novelRepo repository.NovelRepository, workers int, source string, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		client:    client,
		novelRepo: novelRepo,
		pool:      NewWorkerPool(workers),
		source:    source,
		logger:    logger,
	}
}

// Sync walks the catalog until the last page or maxPages, whichever comes
// first. maxPages <= 0 means no cap.
func (s *SyncService) Sync(ctx context.Context, maxPages int) (*SyncStats, error) {
	stats := &SyncStats{}
	var imported, failed atomic.Int64

	s.pool.Start()
	defer s.pool.Shutdown()

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		resp, err := s.client.GetNovels(ctx, page, perPage)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
		}
		stats.Pages++

		for i := range resp.Novels {
			entry := resp.Novels[i]
			s.pool.Submit(func(ctx context.Context) error {
				if err := s.importNovel(entry); err != nil {
					failed.Add(1)
					return err
				}
				imported.Add(1)
				return nil
			})
		}

		if !resp.PageInfo.HasNextPage {
			break
		}
	}

	s.pool.Wait()
	stats.Imported = imported.Load()
	stats.Failed = failed.Load()

	s.logger.Info("catalog sync finished",
		"pages", stats.Pages, "imported", stats.Imported, "failed", stats.Failed)
	return stats, nil
}

func (s *SyncService) importNovel(entry NovelEntry) error {
	if entry.Title == "" || entry.Slug == "" {
		return fmt.Errorf("catalog entry %q missing title or slug", entry.Ref)
	}

	novel := &models.Novel{
		Slug:          entry.Slug,
		Title:         entry.Title,
		Author:        entry.Author,
		Status:        entry.Status,
		Description:   entry.Description,
		CoverURL:      entry.CoverURL,
		Source:        &s.source,
		SourceRef:     &entry.Ref,
		TotalChapters: entry.Chapters,
	}
	return s.novelRepo.UpsertBySourceRef(novel)
}
