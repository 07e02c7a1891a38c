package commenttree

// Tree mutators. Each one rebuilds the path from the root to the changed node
// and shares everything else, so callers can hold on to an old forest value
// while the section state moves on. All by-id operations are depth-first and
// stop at the first match; ids are globally unique so the first match is the
// only one. An id that is not found is a silent no-op: the target may have
// been deleted concurrently and the caller's UI element is already gone.

// InsertRoot prepends a node to the root sequence. Used for the user's own
// new top-level comment and for live-pushed comments; newest root first.
func InsertRoot(forest Forest, n *Node) Forest {
	out := make(Forest, 0, len(forest)+1)
	out = append(out, n)
	return append(out, forest...)
}

// InsertReply appends reply to the reply list of the node with id parentID
// and expands that node. The second return value reports whether the parent
// was found; when it was not, the forest comes back unchanged.
func InsertReply(forest Forest, parentID string, reply *Node) (Forest, bool) {
	found := false
	out := mapNodes(forest, &found, func(n *Node) *Node {
		if n.ID != parentID {
			return nil
		}
		clone := *n
		clone.Replies = append(append([]*Node{}, n.Replies...), reply)
		clone.RepliesExpanded = true
		return &clone
	})
	return out, found
}

// Replace swaps the comment held by the node with the given id for the
// canonical server copy and marks it edited. Local UI state (replies,
// expansion) is untouched; the displayed content always ends up matching the
// source of truth, not whatever draft the user typed.
func Replace(forest Forest, id string, canonical Comment) (Forest, bool) {
	found := false
	out := mapNodes(forest, &found, func(n *Node) *Node {
		if n.ID != id {
			return nil
		}
		clone := *n
		clone.Comment = canonical
		clone.Comment.ID = n.ID
		clone.Comment.Edited = true
		return &clone
	})
	return out, found
}

// Remove filters out the node with the given id wherever it occurs, together
// with its entire subtree. Returns the number of comments removed (0 when the
// id was not found).
func Remove(forest Forest, id string) (Forest, int) {
	removed := 0
	out := make(Forest, 0, len(forest))
	for _, n := range forest {
		if n.ID == id {
			removed += 1 + Count(n.Replies)
			continue
		}
		if removed == 0 {
			if replies, r := Remove(n.Replies, id); r > 0 {
				clone := *n
				clone.Replies = replies
				out = append(out, &clone)
				removed = r
				continue
			}
		}
		out = append(out, n)
	}
	if removed == 0 {
		return forest, 0
	}
	return out, removed
}

// ToggleExpanded flips RepliesExpanded on the matching node only.
func ToggleExpanded(forest Forest, id string) (Forest, bool) {
	found := false
	out := mapNodes(forest, &found, func(n *Node) *Node {
		if n.ID != id {
			return nil
		}
		clone := *n
		clone.RepliesExpanded = !n.RepliesExpanded
		return &clone
	})
	return out, found
}

// mapNodes applies fn over the forest depth-first. fn returns a replacement
// node for the one match and nil otherwise; traversal stops rewriting once
// the match is found. When nothing matched the input forest is returned
// as-is.
func mapNodes(forest Forest, found *bool, fn func(*Node) *Node) Forest {
	out := make(Forest, 0, len(forest))
	for _, n := range forest {
		if *found {
			out = append(out, n)
			continue
		}
		if repl := fn(n); repl != nil {
			*found = true
			out = append(out, repl)
			continue
		}
		if replies := mapNodes(n.Replies, found, fn); *found {
			clone := *n
			clone.Replies = replies
			out = append(out, &clone)
			continue
		}
		out = append(out, n)
	}
	if !*found {
		return forest
	}
	return out
}
