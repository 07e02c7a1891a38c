package commentsync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"novelhub/internal/commenttree"
)

const (
	// DefaultPageSize is the one-shot fetch size; matches what the web pages
	// request.
	DefaultPageSize = 100

	// MaxReplyDepth limits reply composition, not the data model: a reply to
	// a node at this depth is refused before it ever reaches the server.
	MaxReplyDepth = 3
)

var (
	ErrEmptyContent        = errors.New("comment content is empty")
	ErrReplyTooDeep        = errors.New("reply nesting limit reached")
	ErrReplyTargetNotFound = errors.New("reply target not found")
	ErrNoSubject           = errors.New("no subject set for comment section")
)

// Section owns the comment state for one subject: the forest, the displayed
// total and the load/subscription flags. The whole struct is reset when the
// reader navigates to another novel or chapter; no two sections ever share a
// forest. The mutex stands in for the single-threaded event loop the state
// was designed for: every mutation runs to completion before the listener
// goroutine or another caller gets a turn.
type Section struct {
	api    API
	stream Stream
	logger *slog.Logger

	mu          sync.Mutex
	subject     Subject
	forest      commenttree.Forest
	total       int
	loaded      bool
	inFlight    bool
	seen        map[string]bool // ids already folded in, for push dedupe
	unsubscribe func()
}

// NewSection creates a section bound to a subject. The stream may be nil for
// hosts that do not want live updates (admin views, tests of pure CRUD).
func NewSection(subject Subject, api API, stream Stream, logger *slog.Logger) *Section {
	if logger == nil {
		logger = slog.Default()
	}
	return &Section{
		api:     api,
		stream:  stream,
		logger:  logger,
		subject: subject,
		seen:    make(map[string]bool),
	}
}

// Forest returns the current forest. Mutations never modify nodes in place,
// so the returned value stays stable while the section moves on.
func (s *Section) Forest() commenttree.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Total returns the displayed comment count for the subject.
func (s *Section) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Loaded reports whether the initial fetch has committed.
func (s *Section) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadOnce fetches the first comment page for the subject and organizes it
// into the forest. Repeat calls are no-ops once a fetch has committed, and
// while one is in flight. A failed fetch commits nothing and leaves the
// section loadable, so the user can retry.
func (s *Section) LoadOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.subject.IsZero() {
		s.mu.Unlock()
		return ErrNoSubject
	}
	if s.loaded || s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	subject := s.subject
	s.mu.Unlock()

	page, err := s.api.ListComments(ctx, subject, 0, DefaultPageSize, "createdAt", "asc")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return err
	}
	if s.subject != subject {
		// navigated away while the fetch was in flight; drop the result
		return nil
	}
	s.forest = commenttree.Organize(page.Comments)
	s.total = page.Total
	// the committed page replaces anything folded in while the fetch was out;
	// the dedupe set is rebuilt to match so a redelivery of a dropped comment
	// can still land
	seen := make(map[string]bool, len(page.Comments))
	for _, c := range page.Comments {
		seen[c.ID] = true
	}
	s.seen = seen
	s.loaded = true
	return nil
}

// AddComment submits a new top-level comment. The comment appears at the
// front of the root list immediately under a placeholder id; on confirmation
// the placeholder is swapped for the server's canonical comment, and on
// failure it is removed again so no ghost comment survives a rejected write.
func (s *Section) AddComment(ctx context.Context, content string) (*commenttree.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	if s.subject.IsZero() {
		s.mu.Unlock()
		return nil, ErrNoSubject
	}
	pending := s.pendingComment(content, nil)
	s.forest = commenttree.InsertRoot(s.forest, commenttree.NewNode(pending))
	s.total++
	req := s.createRequest(content, nil)
	s.mu.Unlock()

	created, err := s.api.CreateComment(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// compensating rollback of the optimistic insert
		var removed int
		s.forest, removed = commenttree.Remove(s.forest, pending.ID)
		s.total -= removed
		return nil, err
	}
	s.confirmPending(pending.ID, *created)
	return created, nil
}

// AddReply submits a reply under parentID, subject to the nesting policy.
// Same optimistic-insert-with-rollback shape as AddComment; if the parent
// vanished while the request was out, the confirmed reply is dropped on the
// floor (the server kept it, the next full fetch will show it).
func (s *Section) AddReply(ctx context.Context, parentID, content string) (*commenttree.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	if depth := commenttree.Depth(s.forest, parentID); depth == 0 || depth >= MaxReplyDepth {
		s.mu.Unlock()
		if depth == 0 {
			return nil, ErrReplyTargetNotFound
		}
		return nil, ErrReplyTooDeep
	}
	pending := s.pendingComment(content, &parentID)
	var inserted bool
	s.forest, inserted = commenttree.InsertReply(s.forest, parentID, commenttree.NewNode(pending))
	if inserted {
		s.total++
	}
	req := s.createRequest(content, &parentID)
	s.mu.Unlock()

	created, err := s.api.CreateComment(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var removed int
		s.forest, removed = commenttree.Remove(s.forest, pending.ID)
		s.total -= removed
		return nil, err
	}
	s.confirmPending(pending.ID, *created)
	return created, nil
}

// EditComment is confirm-first: nothing changes locally until the server
// accepts the edit, and what lands in the forest is the server's canonical
// content, never the local draft.
func (s *Section) EditComment(ctx context.Context, id, content string) (*commenttree.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	updated, err := s.api.UpdateComment(ctx, id, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.forest, _ = commenttree.Replace(s.forest, id, *updated)
	return updated, nil
}

// DeleteComment is confirm-first so a comment never disappears and then
// reappears on refresh after a failed delete. The whole subtree goes with it
// and the counter drops by the number of comments actually removed.
func (s *Section) DeleteComment(ctx context.Context, id string) error {
	if err := s.api.DeleteComment(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int
	s.forest, removed = commenttree.Remove(s.forest, id)
	s.total -= removed
	return nil
}

// ToggleReplies flips the reply visibility flag on one node. Local only.
func (s *Section) ToggleReplies(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forest, _ = commenttree.ToggleExpanded(s.forest, id)
}

// CanReply reports whether the composition UI may open a reply box under the
// given comment.
func (s *Section) CanReply(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	depth := commenttree.Depth(s.forest, id)
	return depth > 0 && depth < MaxReplyDepth
}

// Listen subscribes to the subject's push topic and folds inbound comments
// into the forest until the context is canceled or the section is reset.
// Comments already present (the echo of the reader's own submission, or a
// duplicate delivery) are dropped by id. Malformed payloads are logged and
// skipped; they must never tear down the subscription.
func (s *Section) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.stream == nil || s.subject.IsZero() {
		s.mu.Unlock()
		return ErrNoSubject
	}
	topic := s.subject.Topic()
	s.mu.Unlock()

	ch, cancel, err := s.stream.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = cancel
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				s.fold(topic, payload)
			}
		}
	}()
	return nil
}

// fold applies one inbound push payload to the forest.
func (s *Section) fold(topic string, payload []byte) {
	var incoming commenttree.Comment
	if err := json.Unmarshal(payload, &incoming); err != nil || incoming.ID == "" {
		s.logger.Warn("dropping malformed comment push", "topic", topic, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if topic != s.subject.Topic() {
		// stale subscription racing a reset
		return
	}
	if s.seen[incoming.ID] || commenttree.Contains(s.forest, incoming.ID) {
		return
	}
	s.seen[incoming.ID] = true
	s.forest = commenttree.InsertRoot(s.forest, commenttree.NewNode(incoming))
	s.total++
}

// Reset points the section at a new subject, dropping the forest, the flags
// and the live subscription. Mirrors navigating between chapters.
func (s *Section) Reset(subject Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.subject = subject
	s.forest = nil
	s.total = 0
	s.loaded = false
	s.inFlight = false
	s.seen = make(map[string]bool)
}

// Close tears down the live subscription. The section keeps its state so a
// final render remains possible.
func (s *Section) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// pendingComment builds the optimistic placeholder shown while a create is
// in flight. Callers hold the lock.
func (s *Section) pendingComment(content string, parentID *string) commenttree.Comment {
	now := time.Now().UTC()
	c := commenttree.Comment{
		ID:        "pending-" + uuid.NewString(),
		Content:   content,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.subject.NovelID != "" {
		id := s.subject.NovelID
		c.NovelID = &id
	}
	if s.subject.ChapterID != "" {
		id := s.subject.ChapterID
		c.ChapterID = &id
	}
	return c
}

func (s *Section) createRequest(content string, parentID *string) CreateRequest {
	req := CreateRequest{Content: content, ParentID: parentID}
	if s.subject.NovelID != "" {
		id := s.subject.NovelID
		req.NovelID = &id
	}
	if s.subject.ChapterID != "" {
		id := s.subject.ChapterID
		req.ChapterID = &id
	}
	return req
}

// confirmPending swaps the optimistic placeholder for the canonical server
// comment: the placeholder goes, the confirmed comment comes back in at the
// same structural position (front of the root list, or under its parent for
// replies). The push echo of the reader's own comment can beat the HTTP
// response back, so the canonical id is only inserted if the listener has
// not already folded it in. The counter is settled against what actually
// changed, so it keeps matching the forest even when the parent vanished or
// the echo landed mid-flight. Callers hold the lock.
func (s *Section) confirmPending(pendingID string, canonical commenttree.Comment) {
	var removed int
	s.forest, removed = commenttree.Remove(s.forest, pendingID)

	inserted := 0
	if !s.seen[canonical.ID] && !commenttree.Contains(s.forest, canonical.ID) {
		node := commenttree.NewNode(canonical)
		if canonical.IsRoot() {
			s.forest = commenttree.InsertRoot(s.forest, node)
			inserted = 1
		} else if f, ok := commenttree.InsertReply(s.forest, *canonical.ParentID, node); ok {
			// parent deleted mid-flight means no insert: the server kept the
			// reply, the next full fetch will show it
			s.forest = f
			inserted = 1
		}
	}
	s.seen[canonical.ID] = true
	s.total += inserted - removed
}
