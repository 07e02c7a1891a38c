package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"novelhub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNovelRepo records upserts; only the methods the sync path touches do
// anything.
type fakeNovelRepo struct {
	mu      sync.Mutex
	upserts []models.Novel
	err     error
}

func (f *fakeNovelRepo) UpsertBySourceRef(novel *models.Novel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, *novel)
	return nil
}

func (f *fakeNovelRepo) Create(*models.Novel) error                        { return nil }
func (f *fakeNovelRepo) Update(*models.Novel) error                        { return nil }
func (f *fakeNovelRepo) GetByID(string) (*models.Novel, error)             { return nil, nil }
func (f *fakeNovelRepo) GetBySlug(string) (*models.Novel, error)           { return nil, nil }
func (f *fakeNovelRepo) List(int, int, string) ([]models.Novel, int64, error) {
	return nil, 0, nil
}
func (f *fakeNovelRepo) Exists(string) (bool, error)     { return false, nil }
func (f *fakeNovelRepo) IncrementViewCount(string) error { return nil }

func catalogServer(t *testing.T, pages [][]NovelEntry) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		require.GreaterOrEqual(t, page, 1)

		resp := NovelPageResponse{
			PageInfo: PageInfo{
				CurrentPage: page,
				LastPage:    len(pages),
				HasNextPage: page < len(pages),
			},
		}
		if page <= len(pages) {
			resp.Novels = pages[page-1]
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func entry(ref, title string) NovelEntry {
	return NovelEntry{Ref: ref, Title: title, Slug: title + "-slug", Chapters: 10}
}

func TestSyncImportsAllPages(t *testing.T) {
	srv := catalogServer(t, [][]NovelEntry{
		{entry("r1", "alpha"), entry("r2", "beta")},
		{entry("r3", "gamma")},
	})
	defer srv.Close()

	repo := &fakeNovelRepo{}
	client := NewClient(srv.URL, 100, 5*time.Second)
	svc := NewSyncService(client, repo, 2, "testsource", nil)

	stats, err := svc.Sync(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, int64(3), stats.Imported)
	assert.Equal(t, int64(0), stats.Failed)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.upserts, 3)
	for _, n := range repo.upserts {
		require.NotNil(t, n.Source)
		assert.Equal(t, "testsource", *n.Source)
		require.NotNil(t, n.SourceRef)
	}
}

func TestSyncHonorsPageCap(t *testing.T) {
	srv := catalogServer(t, [][]NovelEntry{
		{entry("r1", "alpha")},
		{entry("r2", "beta")},
		{entry("r3", "gamma")},
	})
	defer srv.Close()

	repo := &fakeNovelRepo{}
	svc := NewSyncService(NewClient(srv.URL, 100, 5*time.Second), repo, 1, "testsource", nil)

	stats, err := svc.Sync(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, int64(1), stats.Imported)
}

func TestSyncCountsInvalidEntriesAsFailed(t *testing.T) {
	srv := catalogServer(t, [][]NovelEntry{
		{entry("r1", "alpha"), {Ref: "r2"}}, // second entry has no title/slug
	})
	defer srv.Close()

	repo := &fakeNovelRepo{}
	svc := NewSyncService(NewClient(srv.URL, 100, 5*time.Second), repo, 1, "testsource", nil)

	stats, err := svc.Sync(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Imported)
	assert.Equal(t, int64(1), stats.Failed)
}
