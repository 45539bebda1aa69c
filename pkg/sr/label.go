// Package sr implements Segment Routing label arithmetic.
package sr

import "fmt"

// SRGB is a node's Segment Routing Global Block: a contiguous MPLS label
// range from which Node-SIDs and Adj-SIDs are allocated by index.
type SRGB struct {
	Base uint32 // first label of the block
	Size uint32 // number of labels in the block
}

// LabelRangeError reports a SID index that falls outside its SRGB.
type LabelRangeError struct {
	Base  uint32
	Size  uint32
	Index int
}

func (e *LabelRangeError) Error() string {
	return fmt.Sprintf("sid index %d outside SRGB [%d, %d)", e.Index, e.Base, e.Base+e.Size)
}

// Resolve converts a SID index into an absolute MPLS label.
// The index must satisfy 0 <= index < Size.
func (b SRGB) Resolve(index int) (uint32, error) {
	if index < 0 || uint32(index) >= b.Size {
		return 0, &LabelRangeError{Base: b.Base, Size: b.Size, Index: index}
	}
	return b.Base + uint32(index), nil
}
