package tree

// Path is an ordered sequence of 1-indexed child positions from a
// root. The empty path denotes the root itself.
type Path []int

// PathEqual reports whether a and b address the same node.
func PathEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Less reports whether a sorts lexicographically before b — used to
// check the §8 pre-order capture ordering invariant.
func (a Path) Less(b Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// GetPath returns the path from root to n. n must be reachable from
// root by following Parent pointers; if it isn't, GetPath returns nil
// and false.
func GetPath(root, n *Node) (Path, bool) {
	var rev Path
	cur := n
	for cur != root {
		if cur == nil {
			return nil, false
		}
		idx, ok := cur.NodeIndex()
		if !ok {
			return nil, false
		}
		rev = append(rev, idx)
		cur = cur.Parent
	}
	path := make(Path, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path, true
}

// GetByPath navigates root by path. Any out-of-range index along the
// way yields "no such node" (false), never an error, per §7.
func GetByPath(root *Node, path Path) (*Node, bool) {
	cur := root
	for _, idx := range path {
		next, ok := cur.ChildAt(idx)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
