package service

import (
	"context"
	"errors"
	"log/slog"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNovelNotFound   = errors.New("novel not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNotCommentOwner = errors.New("you don't have permission to modify this comment")
	ErrSubjectRequired = errors.New("comment must target exactly one of novel or chapter")
)

// CommentPublisher pushes a freshly created comment to the subject's live
// topic. Backed by the redis publisher in production, by a mock in tests.
type CommentPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type CommentService interface {
	AddComment(userID string, req *dto.CreateCommentDTO) (*dto.CommentResponse, error)
	UpdateComment(commentID, userID, role string, content string) (*dto.CommentResponse, error)
	DeleteComment(commentID, userID, role string) error
	GetCommentByID(commentID string) (*dto.CommentResponse, error)
	GetNovelComments(novelID string, page, size int, sortDir string) (*dto.PageResponse, error)
	GetChapterComments(chapterID string, page, size int, sortDir string) (*dto.PageResponse, error)
	GetUserComments(userID string, page, size int) (*dto.PageResponse, error)
	GetReplies(parentID string, page, size int) (*dto.PageResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	novelRepo   repository.NovelRepository
	chapterRepo repository.ChapterRepository
	publisher   CommentPublisher
	logger      *slog.Logger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	novelRepo repository.NovelRepository,
	chapterRepo repository.ChapterRepository,
	publisher CommentPublisher,
	logger *slog.Logger,
) CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		commentRepo: commentRepo,
		novelRepo:   novelRepo,
		chapterRepo: chapterRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// AddComment creates a comment or a reply. A reply inherits its subject from
// the parent comment regardless of what the request carried, so a thread can
// never straddle two subjects. Every stored comment is pushed to the
// subject's live topic; publish failures are logged and swallowed since the
// write itself succeeded.
func (s *commentService) AddComment(userID string, req *dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	comment := &models.Comment{
		UserID:  userID,
		Content: req.Content,
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		comment.ParentID = &parent.ID
		comment.NovelID = parent.NovelID
		comment.ChapterID = parent.ChapterID
	} else {
		if err := s.resolveSubject(req, comment); err != nil {
			return nil, err
		}
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// reload with user data
	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromModelToCommentResponse(comment)
	s.publish(resp)
	return resp, nil
}

func (s *commentService) resolveSubject(req *dto.CreateCommentDTO, comment *models.Comment) error {
	hasNovel := req.NovelID != nil && *req.NovelID != ""
	hasChapter := req.ChapterID != nil && *req.ChapterID != ""
	if hasNovel == hasChapter {
		return ErrSubjectRequired
	}

	if hasNovel {
		ok, err := s.novelRepo.Exists(*req.NovelID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNovelNotFound
		}
		comment.NovelID = req.NovelID
		return nil
	}

	ok, err := s.chapterRepo.Exists(*req.ChapterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChapterNotFound
	}
	comment.ChapterID = req.ChapterID
	return nil
}

func (s *commentService) publish(resp *dto.CommentResponse) {
	if s.publisher == nil {
		return
	}
	topic := ""
	switch {
	case resp.ChapterID != nil:
		topic = "chapter." + *resp.ChapterID
	case resp.NovelID != nil:
		topic = "novel." + *resp.NovelID
	default:
		return
	}
	if err := s.publisher.Publish(context.Background(), topic, resp); err != nil {
		s.logger.Warn("failed to publish comment event", "topic", topic, "comment_id", resp.ID, "error", err)
	}
}

// UpdateComment edits a comment's content. Owners can edit their own
// comments; admins can edit anything. The edited flag sticks forever.
func (s *commentService) UpdateComment(commentID, userID, role string, content string) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != userID && role != "admin" {
		return nil, ErrNotCommentOwner
	}

	comment.Content = content
	comment.Edited = true
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

// DeleteComment removes a comment and, through the FK cascade, its whole
// reply subtree.
func (s *commentService) DeleteComment(commentID, userID, role string) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID && role != "admin" {
		return ErrNotCommentOwner
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) GetCommentByID(commentID string) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

// GetNovelComments returns one flat page of a novel's thread.
func (s *commentService) GetNovelComments(novelID string, page, size int, sortDir string) (*dto.PageResponse, error) {
	ok, err := s.novelRepo.Exists(novelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNovelNotFound
	}

	comments, total, err := s.commentRepo.GetByNovel(novelID, page, size, sortDir)
	if err != nil {
		return nil, err
	}
	return s.toPage(comments, total, page, size), nil
}

// GetChapterComments returns one flat page of a chapter's thread.
func (s *commentService) GetChapterComments(chapterID string, page, size int, sortDir string) (*dto.PageResponse, error) {
	ok, err := s.chapterRepo.Exists(chapterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChapterNotFound
	}

	comments, total, err := s.commentRepo.GetByChapter(chapterID, page, size, sortDir)
	if err != nil {
		return nil, err
	}
	return s.toPage(comments, total, page, size), nil
}

func (s *commentService) GetUserComments(userID string, page, size int) (*dto.PageResponse, error) {
	comments, total, err := s.commentRepo.GetByUser(userID, page, size)
	if err != nil {
		return nil, err
	}
	return s.toPage(comments, total, page, size), nil
}

func (s *commentService) GetReplies(parentID string, page, size int) (*dto.PageResponse, error) {
	comments, total, err := s.commentRepo.GetReplies(parentID, page, size)
	if err != nil {
		return nil, err
	}
	return s.toPage(comments, total, page, size), nil
}

func (s *commentService) toPage(comments []models.Comment, total int64, page, size int) *dto.PageResponse {
	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPageResponse(responses, total, page, size)
}
