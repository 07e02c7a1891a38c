package commentsync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/internal/commenttree"
)

// fakeAPI backs the engine with canned responses.
type fakeAPI struct {
	listFn   func(subject Subject, page, size int) (*Page, error)
	createFn func(req CreateRequest) (*commenttree.Comment, error)
	updateFn func(id, content string) (*commenttree.Comment, error)
	deleteFn func(id string) error

	listCalls int
}

func (f *fakeAPI) ListComments(_ context.Context, subject Subject, page, size int, _, _ string) (*Page, error) {
	f.listCalls++
	return f.listFn(subject, page, size)
}

func (f *fakeAPI) CreateComment(_ context.Context, req CreateRequest) (*commenttree.Comment, error) {
	return f.createFn(req)
}

func (f *fakeAPI) UpdateComment(_ context.Context, id, content string) (*commenttree.Comment, error) {
	return f.updateFn(id, content)
}

func (f *fakeAPI) DeleteComment(_ context.Context, id string) error {
	return f.deleteFn(id)
}

// fakeStream hands the listener a channel the test pushes into directly.
type fakeStream struct {
	ch       chan []byte
	topic    string
	canceled bool
}

func (f *fakeStream) Subscribe(_ context.Context, topic string) (<-chan []byte, func(), error) {
	f.topic = topic
	f.ch = make(chan []byte, 8)
	return f.ch, func() { f.canceled = true }, nil
}

func (f *fakeStream) push(t *testing.T, c commenttree.Comment) {
	t.Helper()
	payload, err := json.Marshal(c)
	require.NoError(t, err)
	f.ch <- payload
}

func serverComment(id string, parentID *string) commenttree.Comment {
	chapterID := "42"
	return commenttree.Comment{
		ID:        id,
		Content:   "content " + id,
		UserID:    "user-1",
		Username:  "reader",
		ParentID:  parentID,
		ChapterID: &chapterID,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func strptr(s string) *string { return &s }

func chapterSubject() Subject { return Subject{ChapterID: "42"} }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestLoadOnce_FetchesAndOrganizes(t *testing.T) {
	api := &fakeAPI{
		listFn: func(_ Subject, page, size int) (*Page, error) {
			assert.Equal(t, 0, page)
			assert.Equal(t, DefaultPageSize, size)
			return &Page{
				Comments: []commenttree.Comment{
					serverComment("1", nil),
					serverComment("1a", strptr("1")),
					serverComment("2", nil),
				},
				Total: 3,
			}, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)

	require.NoError(t, s.LoadOnce(context.Background()))

	forest := s.Forest()
	require.Len(t, forest, 2)
	assert.Equal(t, "1", forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, 3, s.Total())
	assert.True(t, s.Loaded())

	// second call is a no-op
	require.NoError(t, s.LoadOnce(context.Background()))
	assert.Equal(t, 1, api.listCalls)
}

func TestLoadOnce_ErrorLeavesSectionLoadable(t *testing.T) {
	fail := true
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)

	assert.Error(t, s.LoadOnce(context.Background()))
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Forest())

	fail = false
	require.NoError(t, s.LoadOnce(context.Background()))
	assert.True(t, s.Loaded())
	assert.Equal(t, 1, s.Total())
}

func TestAddComment_ConfirmSwapsPlaceholder(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
		createFn: func(req CreateRequest) (*commenttree.Comment, error) {
			assert.Equal(t, "hello there", req.Content)
			require.NotNil(t, req.ChapterID)
			c := serverComment("99", nil)
			c.Content = req.Content
			return &c, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	created, err := s.AddComment(context.Background(), "  hello there  ")

	require.NoError(t, err)
	assert.Equal(t, "99", created.ID)
	forest := s.Forest()
	require.Len(t, forest, 2)
	assert.Equal(t, "99", forest[0].ID)
	assert.Equal(t, 2, s.Total())
	assert.Equal(t, commenttree.Count(forest), s.Total())
}

func TestAddComment_RollbackOnServerError(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
		createFn: func(CreateRequest) (*commenttree.Comment, error) {
			return nil, errors.New("rejected")
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	_, err := s.AddComment(context.Background(), "doomed")

	assert.Error(t, err)
	forest := s.Forest()
	require.Len(t, forest, 1)
	assert.Equal(t, "1", forest[0].ID)
	assert.Equal(t, 1, s.Total())
}

func TestAddComment_EmptyContentRefused(t *testing.T) {
	s := NewSection(chapterSubject(), &fakeAPI{}, nil, nil)

	_, err := s.AddComment(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestAddReply_CountStaysConsistent(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{
				Comments: []commenttree.Comment{serverComment("1", nil), serverComment("2", nil)},
				Total:    2,
			}, nil
		},
		createFn: func(req CreateRequest) (*commenttree.Comment, error) {
			c := serverComment("r1", req.ParentID)
			c.Content = req.Content
			return &c, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	_, err := s.AddReply(context.Background(), "1", "a reply")

	require.NoError(t, err)
	forest := s.Forest()
	assert.Equal(t, 3, commenttree.Count(forest))
	assert.Equal(t, 3, s.Total())
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, "r1", forest[0].Replies[0].ID)
}

func TestAddReply_DepthLimit(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{
				Comments: []commenttree.Comment{
					serverComment("1", nil),
					serverComment("2", strptr("1")),
					serverComment("3", strptr("2")),
				},
				Total: 3,
			}, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	assert.True(t, s.CanReply("2"))
	assert.False(t, s.CanReply("3"))

	_, err := s.AddReply(context.Background(), "3", "too deep")
	assert.ErrorIs(t, err, ErrReplyTooDeep)
	assert.Equal(t, 3, s.Total())
}

func TestEditComment_ServerContentWins(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("5", nil)}, Total: 1}, nil
		},
		updateFn: func(id, content string) (*commenttree.Comment, error) {
			c := serverComment(id, nil)
			c.Content = "server text"
			return &c, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	_, err := s.EditComment(context.Background(), "5", "draft text")

	require.NoError(t, err)
	node := s.Forest()[0]
	assert.Equal(t, "server text", node.Content)
	assert.True(t, node.Edited)
}

func TestEditComment_NoLocalChangeOnError(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("5", nil)}, Total: 1}, nil
		},
		updateFn: func(string, string) (*commenttree.Comment, error) {
			return nil, errors.New("boom")
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	_, err := s.EditComment(context.Background(), "5", "draft text")

	assert.Error(t, err)
	node := s.Forest()[0]
	assert.Equal(t, "content 5", node.Content)
	assert.False(t, node.Edited)
}

func TestDeleteComment_IsNotOptimistic(t *testing.T) {
	deleteErr := errors.New("boom")
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{
				Comments: []commenttree.Comment{
					serverComment("1", nil),
					serverComment("1a", strptr("1")),
				},
				Total: 2,
			}, nil
		},
		deleteFn: func(string) error { return deleteErr },
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	// failed delete leaves the node in place
	assert.Error(t, s.DeleteComment(context.Background(), "1"))
	assert.True(t, commenttree.Contains(s.Forest(), "1"))
	assert.Equal(t, 2, s.Total())

	// confirmed delete removes the whole subtree and settles the counter
	deleteErr = nil
	require.NoError(t, s.DeleteComment(context.Background(), "1"))
	assert.Empty(t, s.Forest())
	assert.Zero(t, s.Total())
}

func TestListen_FoldsPushedComment(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
	}
	stream := &fakeStream{}
	s := NewSection(chapterSubject(), api, stream, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))
	assert.Equal(t, "chapter.42", stream.topic)

	incoming := serverComment("99", nil)
	incoming.Content = "hi"
	stream.push(t, incoming)

	waitFor(t, func() bool { return s.Total() == 2 })
	forest := s.Forest()
	assert.Equal(t, "99", forest[0].ID)
}

func TestListen_DeduplicatesById(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
		createFn: func(req CreateRequest) (*commenttree.Comment, error) {
			c := serverComment("mine", nil)
			c.Content = req.Content
			return &c, nil
		},
	}
	stream := &fakeStream{}
	s := NewSection(chapterSubject(), api, stream, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))

	_, err := s.AddComment(context.Background(), "my own comment")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total())

	// push echo of the reader's own comment, plus a straight duplicate
	stream.push(t, serverComment("mine", nil))
	stream.push(t, serverComment("mine", nil))
	stream.push(t, serverComment("other", nil))

	waitFor(t, func() bool { return s.Total() == 3 })
	// give the duplicates a moment to (not) land
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 3, commenttree.Count(s.Forest()))
}

func TestAddComment_EchoBeforeConfirmationNotDuplicated(t *testing.T) {
	stream := &fakeStream{}
	var s *Section
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
		createFn: func(req CreateRequest) (*commenttree.Comment, error) {
			c := serverComment("mine", nil)
			c.Content = req.Content
			// the push echo beats the HTTP response back, and has already
			// been folded in by the time the create confirms
			stream.push(t, c)
			waitFor(t, func() bool { return commenttree.Contains(s.Forest(), "mine") })
			return &c, nil
		},
	}
	s = NewSection(chapterSubject(), api, stream, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))

	created, err := s.AddComment(context.Background(), "my own comment")
	require.NoError(t, err)
	assert.Equal(t, "mine", created.ID)

	occurrences := 0
	for _, c := range commenttree.Flatten(s.Forest()) {
		if c.ID == "mine" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences, "comment id must appear at most once in the forest")
	assert.Equal(t, 2, s.Total())
	assert.Equal(t, commenttree.Count(s.Forest()), s.Total())
}

func TestAddReply_UnknownParent(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
	}
	s := NewSection(chapterSubject(), api, nil, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	_, err := s.AddReply(context.Background(), "ghost", "hello?")

	assert.ErrorIs(t, err, ErrReplyTargetNotFound)
	assert.Equal(t, 1, s.Total())
}

func TestListen_PreFetchFoldCanBeRedelivered(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
	}
	stream := &fakeStream{}
	s := NewSection(chapterSubject(), api, stream, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))

	stream.push(t, serverComment("99", nil))
	waitFor(t, func() bool { return commenttree.Contains(s.Forest(), "99") })

	// the fetch commits a page snapshotted before the pushed comment existed,
	// wiping it from the forest
	require.NoError(t, s.LoadOnce(context.Background()))
	assert.False(t, commenttree.Contains(s.Forest(), "99"))

	// the transport is best-effort and may redeliver; the comment lands again
	stream.push(t, serverComment("99", nil))
	waitFor(t, func() bool { return commenttree.Contains(s.Forest(), "99") })
	assert.Equal(t, 2, s.Total())
	assert.Equal(t, 2, commenttree.Count(s.Forest()))
}

func TestListen_DropsMalformedPayload(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: nil, Total: 0}, nil
		},
	}
	stream := &fakeStream{}
	s := NewSection(chapterSubject(), api, stream, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))

	stream.ch <- []byte("{not json")
	stream.ch <- []byte(`{"content":"no id"}`)
	stream.push(t, serverComment("ok", nil))

	waitFor(t, func() bool { return s.Total() == 1 })
	assert.Equal(t, 1, commenttree.Count(s.Forest()))
}

func TestReset_TearsDownSubscriptionAndState(t *testing.T) {
	api := &fakeAPI{
		listFn: func(Subject, int, int) (*Page, error) {
			return &Page{Comments: []commenttree.Comment{serverComment("1", nil)}, Total: 1}, nil
		},
	}
	stream := &fakeStream{}
	s := NewSection(chapterSubject(), api, stream, nil)
	require.NoError(t, s.LoadOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Listen(ctx))

	s.Reset(Subject{ChapterID: "43"})

	assert.True(t, stream.canceled)
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Forest())
	assert.Zero(t, s.Total())
}
