package commenttree

// Organize turns a flat list of comments (typically one fetched page, sorted
// by createdAt ascending) into a forest. Two passes, O(n):
//
//  1. build a lookup from id to a fresh node
//  2. walk the list again in the same order and attach each node to its
//     parent's reply list, or to the root sequence when it has no parent
//
// A comment whose parent is not in the batch (parent on another page, or
// deleted between fetches) is kept as a root rather than dropped. Sibling
// order follows the input order.
func Organize(flat []Comment) Forest {
	lookup := make(map[string]*Node, len(flat))
	for _, c := range flat {
		lookup[c.ID] = NewNode(c)
	}

	roots := make(Forest, 0, len(flat))
	for _, c := range flat {
		node := lookup[c.ID]
		if !c.IsRoot() {
			if parent, ok := lookup[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
			// orphan: parent missing from this batch, treat as root
		}
		roots = append(roots, node)
	}
	return roots
}

// Flatten walks the forest depth-first and returns every comment it contains,
// parents before their replies.
func Flatten(forest Forest) []Comment {
	out := make([]Comment, 0, len(forest))
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n.Comment)
			walk(n.Replies)
		}
	}
	walk(forest)
	return out
}

// Count returns the total number of comments in the forest, replies included.
func Count(forest Forest) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.Replies)
	}
	return total
}

// Contains reports whether a comment with the given id is anywhere in the
// forest.
func Contains(forest Forest, id string) bool {
	for _, n := range forest {
		if n.ID == id || Contains(n.Replies, id) {
			return true
		}
	}
	return false
}

// Depth returns the 1-based nesting depth of the node with the given id
// (roots are depth 1), or 0 when the id is not present.
func Depth(forest Forest, id string) int {
	for _, n := range forest {
		if n.ID == id {
			return 1
		}
		if d := Depth(n.Replies, id); d > 0 {
			return d + 1
		}
	}
	return 0
}
