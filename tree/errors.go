package tree

import "fmt"

// OutOfRangeError is returned by mutation operations given an invalid
// child index. Pure navigation (ChildAt, GetByPath, ...) never returns
// an error for an out-of-range index — it returns a not-found sentinel
// instead, per §7.
type OutOfRangeError struct {
	Index, Len int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("tree: index %d out of range (len %d)", e.Index, e.Len)
}
