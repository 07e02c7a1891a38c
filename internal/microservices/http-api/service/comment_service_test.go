package service_test

import (
	"context"
	"errors"
	"testing"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stringPtr(s string) *string { return &s }

// --- MOCK REPOSITORIES ---

type MockCommentRepo struct {
	mock.Mock
}

func (m *MockCommentRepo) Create(comment *models.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepo) Update(comment *models.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepo) Delete(commentID string) error {
	args := m.Called(commentID)
	return args.Error(0)
}

func (m *MockCommentRepo) GetByID(commentID string) (*models.Comment, error) {
	args := m.Called(commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepo) GetByNovel(novelID string, page, size int, sortDir string) ([]models.Comment, int64, error) {
	args := m.Called(novelID, page, size, sortDir)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepo) GetByChapter(chapterID string, page, size int, sortDir string) ([]models.Comment, int64, error) {
	args := m.Called(chapterID, page, size, sortDir)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepo) GetByUser(userID string, page, size int) ([]models.Comment, int64, error) {
	args := m.Called(userID, page, size)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepo) GetReplies(parentID string, page, size int) ([]models.Comment, int64, error) {
	args := m.Called(parentID, page, size)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

type MockNovelRepo struct {
	mock.Mock
}

func (m *MockNovelRepo) Create(novel *models.Novel) error { return m.Called(novel).Error(0) }
func (m *MockNovelRepo) Update(novel *models.Novel) error { return m.Called(novel).Error(0) }

func (m *MockNovelRepo) GetByID(novelID string) (*models.Novel, error) {
	args := m.Called(novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelRepo) GetBySlug(slug string) (*models.Novel, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelRepo) List(page, size int, search string) ([]models.Novel, int64, error) {
	args := m.Called(page, size, search)
	return args.Get(0).([]models.Novel), args.Get(1).(int64), args.Error(2)
}

func (m *MockNovelRepo) Exists(novelID string) (bool, error) {
	args := m.Called(novelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNovelRepo) IncrementViewCount(novelID string) error {
	return m.Called(novelID).Error(0)
}

func (m *MockNovelRepo) UpsertBySourceRef(novel *models.Novel) error {
	return m.Called(novel).Error(0)
}

type MockChapterRepo struct {
	mock.Mock
}

func (m *MockChapterRepo) Create(chapter *models.Chapter) error { return m.Called(chapter).Error(0) }

func (m *MockChapterRepo) GetByID(chapterID string) (*models.Chapter, error) {
	args := m.Called(chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepo) GetByNovelAndNumber(novelID string, number int) (*models.Chapter, error) {
	args := m.Called(novelID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepo) ListByNovel(novelID string, page, size int) ([]models.Chapter, int64, error) {
	args := m.Called(novelID, page, size)
	return args.Get(0).([]models.Chapter), args.Get(1).(int64), args.Error(2)
}

func (m *MockChapterRepo) Exists(chapterID string) (bool, error) {
	args := m.Called(chapterID)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

// --- SETUP ---

type commentServiceFixture struct {
	commentRepo *MockCommentRepo
	novelRepo   *MockNovelRepo
	chapterRepo *MockChapterRepo
	publisher   *MockPublisher
	svc         service.CommentService
}

func newCommentServiceFixture() *commentServiceFixture {
	f := &commentServiceFixture{
		commentRepo: new(MockCommentRepo),
		novelRepo:   new(MockNovelRepo),
		chapterRepo: new(MockChapterRepo),
		publisher:   new(MockPublisher),
	}
	f.svc = service.NewCommentService(f.commentRepo, f.novelRepo, f.chapterRepo, f.publisher, nil)
	return f
}

func storedComment(id, userID string, chapterID *string, parentID *string) *models.Comment {
	return &models.Comment{
		ID:        id,
		UserID:    userID,
		ChapterID: chapterID,
		ParentID:  parentID,
		Content:   "hello",
		User:      &models.User{ID: userID, Username: "alice"},
	}
}

// --- TESTS ---

func TestAddCommentOnChapterPublishesToChapterTopic(t *testing.T) {
	f := newCommentServiceFixture()

	f.chapterRepo.On("Exists", "ch-1").Return(true, nil)
	f.commentRepo.On("Create", mock.AnythingOfType("*models.Comment")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Comment).ID = "c-1"
		}).Return(nil)
	f.commentRepo.On("GetByID", "c-1").
		Return(storedComment("c-1", "u-1", stringPtr("ch-1"), nil), nil)
	f.publisher.On("Publish", mock.Anything, "chapter.ch-1", mock.Anything).Return(nil)

	resp, err := f.svc.AddComment("u-1", &dto.CreateCommentDTO{
		Content:   "hello",
		ChapterID: stringPtr("ch-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "c-1", resp.ID)
	assert.Equal(t, "alice", resp.Username)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, "chapter.ch-1", mock.Anything)
}

func TestAddCommentRequiresExactlyOneSubject(t *testing.T) {
	f := newCommentServiceFixture()

	_, err := f.svc.AddComment("u-1", &dto.CreateCommentDTO{Content: "hi"})
	assert.ErrorIs(t, err, service.ErrSubjectRequired)

	_, err = f.svc.AddComment("u-1", &dto.CreateCommentDTO{
		Content:   "hi",
		NovelID:   stringPtr("n-1"),
		ChapterID: stringPtr("ch-1"),
	})
	assert.ErrorIs(t, err, service.ErrSubjectRequired)
}

func TestAddReplyInheritsParentSubject(t *testing.T) {
	f := newCommentServiceFixture()

	parent := storedComment("c-parent", "u-9", stringPtr("ch-7"), nil)
	f.commentRepo.On("GetByID", "c-parent").Return(parent, nil).Once()

	var created *models.Comment
	f.commentRepo.On("Create", mock.AnythingOfType("*models.Comment")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*models.Comment)
			created.ID = "c-reply"
		}).Return(nil)
	f.commentRepo.On("GetByID", "c-reply").
		Return(storedComment("c-reply", "u-1", stringPtr("ch-7"), stringPtr("c-parent")), nil)
	f.publisher.On("Publish", mock.Anything, "chapter.ch-7", mock.Anything).Return(nil)

	_, err := f.svc.AddComment("u-1", &dto.CreateCommentDTO{
		Content:  "replying",
		ParentID: stringPtr("c-parent"),
		// a stray novel id must be ignored, the parent decides the subject
		NovelID: stringPtr("n-other"),
	})
	require.NoError(t, err)

	require.NotNil(t, created.ChapterID)
	assert.Equal(t, "ch-7", *created.ChapterID)
	assert.Nil(t, created.NovelID)
}

func TestAddReplyToMissingParentFails(t *testing.T) {
	f := newCommentServiceFixture()
	f.commentRepo.On("GetByID", "gone").Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.AddComment("u-1", &dto.CreateCommentDTO{
		Content:  "hi",
		ParentID: stringPtr("gone"),
	})
	assert.ErrorIs(t, err, service.ErrCommentNotFound)
}

func TestAddCommentSucceedsWhenPublishFails(t *testing.T) {
	f := newCommentServiceFixture()

	f.chapterRepo.On("Exists", "ch-1").Return(true, nil)
	f.commentRepo.On("Create", mock.AnythingOfType("*models.Comment")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Comment).ID = "c-1"
		}).Return(nil)
	f.commentRepo.On("GetByID", "c-1").
		Return(storedComment("c-1", "u-1", stringPtr("ch-1"), nil), nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down"))

	resp, err := f.svc.AddComment("u-1", &dto.CreateCommentDTO{
		Content:   "hello",
		ChapterID: stringPtr("ch-1"),
	})
	require.NoError(t, err, "the stored write must win even when the push fails")
	assert.Equal(t, "c-1", resp.ID)
}

func TestUpdateCommentOwnerOnly(t *testing.T) {
	f := newCommentServiceFixture()
	f.commentRepo.On("GetByID", "c-1").
		Return(storedComment("c-1", "u-owner", stringPtr("ch-1"), nil), nil)

	_, err := f.svc.UpdateComment("c-1", "u-other", "user", "new text")
	assert.ErrorIs(t, err, service.ErrNotCommentOwner)
}

func TestUpdateCommentAdminOverridesOwnership(t *testing.T) {
	f := newCommentServiceFixture()

	stored := storedComment("c-1", "u-owner", stringPtr("ch-1"), nil)
	f.commentRepo.On("GetByID", "c-1").Return(stored, nil)
	f.commentRepo.On("Update", mock.AnythingOfType("*models.Comment")).
		Run(func(args mock.Arguments) {
			c := args.Get(0).(*models.Comment)
			assert.True(t, c.Edited, "edited flag must be set")
			assert.Equal(t, "moderated", c.Content)
		}).Return(nil)

	resp, err := f.svc.UpdateComment("c-1", "u-admin", "admin", "moderated")
	require.NoError(t, err)
	assert.True(t, resp.Edited)
}

func TestDeleteCommentNotFound(t *testing.T) {
	f := newCommentServiceFixture()
	f.commentRepo.On("GetByID", "gone").Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.DeleteComment("gone", "u-1", "user")
	assert.ErrorIs(t, err, service.ErrCommentNotFound)
}

func TestDeleteCommentByOwner(t *testing.T) {
	f := newCommentServiceFixture()
	f.commentRepo.On("GetByID", "c-1").
		Return(storedComment("c-1", "u-1", stringPtr("ch-1"), nil), nil)
	f.commentRepo.On("Delete", "c-1").Return(nil)

	require.NoError(t, f.svc.DeleteComment("c-1", "u-1", "user"))
	f.commentRepo.AssertCalled(t, "Delete", "c-1")
}

func TestGetChapterCommentsChecksSubject(t *testing.T) {
	f := newCommentServiceFixture()
	f.chapterRepo.On("Exists", "missing").Return(false, nil)

	_, err := f.svc.GetChapterComments("missing", 0, 100, "asc")
	assert.ErrorIs(t, err, service.ErrChapterNotFound)
}

func TestGetNovelCommentsPagingEnvelope(t *testing.T) {
	f := newCommentServiceFixture()
	f.novelRepo.On("Exists", "n-1").Return(true, nil)
	f.commentRepo.On("GetByNovel", "n-1", 0, 100, "asc").
		Return([]models.Comment{*storedComment("c-1", "u-1", nil, nil)}, int64(250), nil)

	page, err := f.svc.GetNovelComments("n-1", 0, 100, "asc")
	require.NoError(t, err)

	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(250), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
}
