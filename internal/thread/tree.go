package thread

import (
	"sort"

	"github.com/fragmede/wpnews/internal/news"
)

// Node is a comment with its direct replies.
type Node struct {
	Comment  news.Comment
	Children []*Node
}

// Forest is the top-level comments of an item, each with its reply tree.
type Forest []*Node

// Build arranges a flat comment list into a forest. Siblings are ordered by
// PostedAt, then ID. A comment whose parent is missing from the list is
// placed at the top level, and so is the lowest ID of each parent loop.
func Build(comments []news.Comment) Forest {
	nodes := make(map[int64]*Node, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &Node{Comment: c}
	}
	breaks := loopBreaks(nodes)

	var roots Forest
	placed := make(map[int64]bool, len(comments))
	for _, c := range comments {
		if placed[c.ID] {
			continue
		}
		placed[c.ID] = true
		n := nodes[c.ID]
		pid := n.Comment.ParentID
		parent, ok := nodes[pid]
		if pid == 0 || !ok || pid == n.Comment.ID || breaks[n.Comment.ID] {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortNodes(roots)
	return roots
}

// loopBreaks finds comments whose ancestry leads back to themselves and
// returns the lowest ID of every such loop.
func loopBreaks(nodes map[int64]*Node) map[int64]bool {
	breaks := make(map[int64]bool)
	for id := range nodes {
		seen := map[int64]bool{id: true}
		cur := id
		for {
			pid := nodes[cur].Comment.ParentID
			if pid == 0 || pid == cur || nodes[pid] == nil {
				break
			}
			if pid == id {
				lowest := id
				for m := nodes[id].Comment.ParentID; m != id; m = nodes[m].Comment.ParentID {
					lowest = min(lowest, m)
				}
				breaks[lowest] = true
				break
			}
			if seen[pid] {
				break
			}
			seen[pid] = true
			cur = pid
		}
	}
	return breaks
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Comment, nodes[j].Comment
		if !a.PostedAt.Equal(b.PostedAt) {
			return a.PostedAt.Before(b.PostedAt)
		}
		return a.ID < b.ID
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Len returns the number of comments in the forest.
func (f Forest) Len() int {
	total := 0
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			total++
			walk(n.Children)
		}
	}
	walk(f)
	return total
}

// Find returns the comment with the given ID.
func (f Forest) Find(id int64) (news.Comment, bool) {
	for _, fc := range f.Flatten(nil) {
		if fc.Comment.ID == id {
			return fc.Comment, true
		}
	}
	return news.Comment{}, false
}

// CollapseState tracks collapsed comment IDs.
type CollapseState map[int64]bool

// FlatComment is a comment flattened from the forest for display.
type FlatComment struct {
	Comment     news.Comment
	Depth       int
	IsCollapsed bool
	ChildCount  int
}

// Flatten walks the forest depth-first. Replies of collapsed comments are
// skipped but still counted.
func (f Forest) Flatten(cs CollapseState) []FlatComment {
	var result []FlatComment

	// walk returns the total descendant count for this subtree.
	var walk func(n *Node, depth int) int
	walk = func(n *Node, depth int) int {
		idx := len(result)
		result = append(result, FlatComment{
			Comment:     n.Comment,
			Depth:       depth,
			IsCollapsed: cs[n.Comment.ID],
		})

		descendants := 0
		if !cs[n.Comment.ID] {
			for _, kid := range n.Children {
				descendants += 1 + walk(kid, depth+1)
			}
		} else {
			descendants = Forest(n.Children).Len()
		}
		result[idx].ChildCount = descendants
		return descendants
	}

	for _, n := range f {
		walk(n, 0)
	}
	return result
}

// FindParentIndex returns the index of the parent comment in the flat list.
func FindParentIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	parentID := comments[currentIdx].Comment.ParentID
	for i := currentIdx - 1; i >= 0; i-- {
		if comments[i].Comment.ID == parentID {
			return i
		}
	}
	return -1
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Depth
	for i := currentIdx + 1; i < len(comments); i++ {
		if comments[i].Depth < depth {
			return -1
		}
		if comments[i].Depth == depth {
			return i
		}
	}
	return -1
}
