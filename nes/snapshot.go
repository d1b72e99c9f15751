package nes

import (
	"fmt"
	"io"
	"sort"
)

// Region is a contiguous range of view offsets.
type Region struct {
	Offset int
	Size   int
}

func (r Region) End() int { return r.Offset + r.Size }

func (r Region) String() string {
	return fmt.Sprintf("[$%06x..$%06x)", r.Offset, r.End())
}

// MergeRegions sorts regions and coalesces overlapping or adjacent ones. Empty regions are dropped.
func MergeRegions(regions []Region) []Region {
	sorted := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Size > 0 {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	merged := sorted[:0]
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Offset <= merged[n-1].End() {
			if r.End() > merged[n-1].End() {
				merged[n-1].Size = r.End() - merged[n-1].Offset
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

type capture struct {
	offset int
	data   []byte
}

// Snapshot is an immutable copy of selected regions of a View taken at one instant.
// Reads outside the captured regions fail with ErrNotCaptured.
type Snapshot struct {
	kind     Kind
	length   int
	captures []capture
}

// Capture copies regions of v into a Snapshot. Regions are merged first and clipped to v's length;
// regions entirely outside v are skipped. A failed read of a region fails the whole capture.
func Capture(v View, regions []Region) (*Snapshot, error) {
	if v == nil {
		return nil, ErrMemoryUnavailable
	}

	s := &Snapshot{
		kind:   KindOf(v),
		length: v.Len(),
	}

	for _, r := range MergeRegions(regions) {
		if r.Offset < 0 {
			r.Size += r.Offset
			r.Offset = 0
		}
		if r.Offset >= s.length || r.Size <= 0 {
			continue
		}
		if r.End() > s.length {
			r.Size = s.length - r.Offset
		}

		data := make([]byte, r.Size)
		n, err := v.ReadAt(data, int64(r.Offset))
		if err != nil && !(err == io.EOF && n == len(data)) {
			return nil, fmt.Errorf("nes: capture %s: %w", r, err)
		}
		s.captures = append(s.captures, capture{offset: r.Offset, data: data})
	}

	return s, nil
}

// CaptureAll copies the whole view.
func CaptureAll(v View) (*Snapshot, error) {
	if v == nil {
		return nil, ErrMemoryUnavailable
	}
	return Capture(v, []Region{{Offset: 0, Size: v.Len()}})
}

func (s *Snapshot) Len() int   { return s.length }
func (s *Snapshot) Kind() Kind { return s.kind }

// Regions returns the captured regions.
func (s *Snapshot) Regions() []Region {
	regions := make([]Region, len(s.captures))
	for i, c := range s.captures {
		regions[i] = Region{Offset: c.offset, Size: len(c.data)}
	}
	return regions
}

func (s *Snapshot) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off >= int64(s.length) {
		return 0, io.EOF
	}

	o := int(off)
	i := sort.Search(len(s.captures), func(i int) bool {
		c := s.captures[i]
		return c.offset+len(c.data) > o
	})
	if i >= len(s.captures) || s.captures[i].offset > o {
		return 0, ErrNotCaptured
	}

	c := s.captures[i]
	n = copy(p, c.data[o-c.offset:])
	if n < len(p) {
		if o+n >= s.length {
			err = io.EOF
		} else {
			err = ErrNotCaptured
		}
	}
	return
}
