// Package commenttree holds the client-side view model for threaded comments:
// a forest of comment nodes plus the pure transformations applied to it.
// Nothing in here talks to the network or the database; higher layers
// (internal/commentsync, the CLI) feed it comments and render the result.
package commenttree

import "time"

// Comment is a single comment as it travels over the wire. Field names match
// the JSON the comments API serves (camelCase, like the backend DTOs).
// Exactly one of NovelID/ChapterID is set for root comments; replies inherit
// the subject from their parent on the server side.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ParentID  *string   `json:"parentId,omitempty"`
	NovelID   *string   `json:"novelId,omitempty"`
	ChapterID *string   `json:"chapterId,omitempty"`
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot reports whether the comment is a top-level comment.
func (c Comment) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// Node wraps a Comment with its replies for display. Replies keep insertion
// order. RepliesExpanded is local-only UI state and is never sent anywhere.
type Node struct {
	Comment
	Replies         []*Node
	RepliesExpanded bool
}

// NewNode wraps a comment in a fresh node with no replies and the reply list
// expanded, which is the default presentation.
func NewNode(c Comment) *Node {
	return &Node{
		Comment:         c,
		Replies:         []*Node{},
		RepliesExpanded: true,
	}
}

// Forest is the ordered collection of root-level nodes for one subject.
type Forest = []*Node
