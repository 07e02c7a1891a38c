// Package commentsync keeps one subject's comment forest consistent across
// local user actions, the initial page fetch and comments pushed in from
// other readers over the live channel. It is the one place the platform's
// threaded-comment behavior lives; the CLI hosts it the way a page hosts a
// comment section.
package commentsync

import (
	"context"

	"novelhub/internal/commenttree"
)

// Subject is the content item a comment thread is attached to: a novel or a
// chapter, never both.
type Subject struct {
	NovelID   string
	ChapterID string
}

// Topic returns the push-channel topic for the subject.
func (s Subject) Topic() string {
	if s.ChapterID != "" {
		return "chapter." + s.ChapterID
	}
	return "novel." + s.NovelID
}

func (s Subject) IsZero() bool {
	return s.NovelID == "" && s.ChapterID == ""
}

// Page is one fetched page of comments plus the server-side total for the
// whole subject.
type Page struct {
	Comments []commenttree.Comment
	Total    int
}

// CreateRequest mirrors the POST /api/comments body.
type CreateRequest struct {
	Content   string  `json:"content"`
	NovelID   *string `json:"novelId,omitempty"`
	ChapterID *string `json:"chapterId,omitempty"`
	ParentID  *string `json:"parentId,omitempty"`
}

// API is the slice of the comments REST surface the engine needs. The CLI
// backs it with the HTTP client; tests back it with a fake.
type API interface {
	ListComments(ctx context.Context, subject Subject, page, size int, sortBy, sortDir string) (*Page, error)
	CreateComment(ctx context.Context, req CreateRequest) (*commenttree.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (*commenttree.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Stream is the per-topic push channel. Subscribe returns a channel of raw
// JSON comment payloads and a teardown func. The transport is best-effort:
// duplicates and reordering are the listener's problem, not the stream's.
type Stream interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, func(), error)
}
