package pool

import "sync"

// StringSlice provides a pooled []string for collecting path steps.
var stringSlicePool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 16)
		return &s
	},
}

// AcquireStringSlice gets a string slice from the pool.
func AcquireStringSlice() *[]string {
	s := stringSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// ReleaseStringSlice returns a string slice to the pool.
func ReleaseStringSlice(s *[]string) {
	if s == nil {
		return
	}
	// Don't return oversized slices
	if cap(*s) <= 256 {
		stringSlicePool.Put(s)
	}
}

// StringSet provides a pooled map[string]struct{} for membership checks,
// such as the defined-pattern set built during rule repair.
var stringSetPool = sync.Pool{
	New: func() any {
		return make(map[string]struct{}, 64)
	},
}

// AcquireStringSet gets an empty string set from the pool.
func AcquireStringSet() map[string]struct{} {
	return stringSetPool.Get().(map[string]struct{})
}

// ReleaseStringSet clears the set and returns it to the pool.
func ReleaseStringSet(s map[string]struct{}) {
	if s == nil {
		return
	}
	// Don't return oversized sets; maps never shrink
	if len(s) > 1024 {
		return
	}
	clear(s)
	stringSetPool.Put(s)
}
