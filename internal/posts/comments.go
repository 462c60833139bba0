// internal/posts/comments.go
package posts

// BuildCommentTree nests a flat comment list by parentId. Roots and replies keep their
// input (creation) order. Replies whose parent is missing, or whose ancestry loops back on
// itself, are promoted to roots so nothing the server returned is dropped.
func BuildCommentTree(flat []Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(flat))
	parents := make(map[string]string, len(flat))
	ordered := make([]*CommentNode, 0, len(flat))

	for _, c := range flat {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &CommentNode{Comment: c}
		nodes[c.ID] = n
		ordered = append(ordered, n)
		if c.ParentID != nil && *c.ParentID != "" && *c.ParentID != c.ID {
			parents[c.ID] = *c.ParentID
		}
	}

	var roots []*CommentNode
	for _, n := range ordered {
		parentID, ok := parents[n.ID]
		parent, known := nodes[parentID]
		if !ok || !known || loops(n.ID, parents) {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	return roots
}

// loops reports whether walking up from id returns to id.
func loops(id string, parents map[string]string) bool {
	seen := map[string]bool{}
	for cur, ok := parents[id]; ok; cur, ok = parents[cur] {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

// CountComments returns the number of nodes in the tree.
func CountComments(roots []*CommentNode) int {
	n := 0
	for _, r := range roots {
		n += 1 + CountComments(r.Replies)
	}
	return n
}
