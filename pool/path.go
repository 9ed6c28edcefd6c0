// Package pool provides sync.Pool wrappers for reducing GC pressure.
package pool

import (
	"strconv"
	"sync"
)

// Ellipsis marks a truncated path: everything before it was elided.
const Ellipsis = "..."

// PathBuilder provides efficient, zero-allocation building of
// slash-separated document paths. It uses a byte buffer that grows as
// needed and can be reused via sync.Pool.
type PathBuilder struct {
	buf []byte
}

// pathBuilderPool holds reusable PathBuilder instances.
var pathBuilderPool = sync.Pool{
	New: func() any {
		return &PathBuilder{
			buf: make([]byte, 0, 256),
		}
	},
}

// AcquirePathBuilder gets a PathBuilder from the pool.
// Call Release() when done to return it to the pool.
func AcquirePathBuilder() *PathBuilder {
	pb := pathBuilderPool.Get().(*PathBuilder)
	pb.Reset()
	return pb
}

// Release returns the PathBuilder to the pool.
func (b *PathBuilder) Release() {
	if b == nil {
		return
	}
	// Don't return oversized buffers to the pool
	if cap(b.buf) <= 4096 {
		pathBuilderPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *PathBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the path.
func (b *PathBuilder) Len() int {
	return len(b.buf)
}

// WriteString appends a string to the path.
func (b *PathBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a byte to the path.
func (b *PathBuilder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// AppendStep appends one path step with a separating slash if the
// buffer is not empty.
func (b *PathBuilder) AppendStep(step string) {
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '/')
	}
	b.buf = append(b.buf, step...)
}

// AppendSteps appends multiple path steps joined by '/'.
func (b *PathBuilder) AppendSteps(steps ...string) {
	for _, step := range steps {
		b.AppendStep(step)
	}
}

// AppendEllipsis appends the truncation marker as a step.
func (b *PathBuilder) AppendEllipsis() {
	b.AppendStep(Ellipsis)
}

// AppendIndex appends a positional index in brackets [n].
func (b *PathBuilder) AppendIndex(index int) {
	b.buf = append(b.buf, '[')
	b.buf = strconv.AppendInt(b.buf, int64(index), 10)
	b.buf = append(b.buf, ']')
}

// String returns the built path as a string.
// This creates a single allocation for the final string.
func (b *PathBuilder) String() string {
	return string(b.buf)
}

// Bytes returns the underlying byte slice (no copy).
// The returned slice is only valid until the next modification.
func (b *PathBuilder) Bytes() []byte {
	return b.buf
}

// BuildPath is a convenience function that builds a path using a callback.
// The PathBuilder is automatically returned to the pool after the callback.
//
// Example:
//
//	path := pool.BuildPath(func(b *pool.PathBuilder) {
//	    b.AppendEllipsis()
//	    b.AppendSteps("section", "entry", "observation")
//	})
func BuildPath(fn func(*PathBuilder)) string {
	pb := AcquirePathBuilder()
	defer pb.Release()
	fn(pb)
	return pb.String()
}

// JoinSteps joins path steps with slashes.
func JoinSteps(steps ...string) string {
	if len(steps) == 0 {
		return ""
	}
	if len(steps) == 1 {
		return steps[0]
	}

	pb := AcquirePathBuilder()
	defer pb.Release()
	pb.AppendSteps(steps...)
	return pb.String()
}

// IndexedStep renders a step with its positional index, e.g. "entry[2]".
func IndexedStep(step string, index int) string {
	pb := AcquirePathBuilder()
	defer pb.Release()
	pb.WriteString(step)
	pb.AppendIndex(index)
	return pb.String()
}
