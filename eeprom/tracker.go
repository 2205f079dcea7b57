package eeprom

import "sort"

// pageSize is the granularity dirty ranges are rounded to before flushing,
// matching the OS page size so msync operates on whole pages.
const pageSize = 4096

// dirtyRange is a dirty byte range, in absolute offsets within the
// mapped region.
type dirtyRange struct {
	off, len int
}

// tracker accumulates dirty ranges produced by in-place writes and
// coalesces them into page-aligned, non-overlapping ranges at flush
// time. Not safe for concurrent use; callers serialize access per File.
type tracker struct {
	ranges []dirtyRange
}

func newTracker() *tracker {
	return &tracker{ranges: make([]dirtyRange, 0, 8)}
}

func (t *tracker) add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, dirtyRange{off, length})
}

func (t *tracker) reset() {
	t.ranges = t.ranges[:0]
}

func (t *tracker) coalesce() []dirtyRange {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]dirtyRange, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.off / pageSize) * pageSize
		end := r.off + r.len
		if end%pageSize != 0 {
			end = (end/pageSize + 1) * pageSize
		}
		aligned[i] = dirtyRange{start, end - start}
	}

	sort.Slice(aligned, func(i, j int) bool { return aligned[i].off < aligned[j].off })

	merged := make([]dirtyRange, 0, len(aligned))
	cur := aligned[0]
	for _, next := range aligned[1:] {
		if next.off <= cur.off+cur.len {
			if end := next.off + next.len; end > cur.off+cur.len {
				cur.len = end - cur.off
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}
