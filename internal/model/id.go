package model

import (
	"strconv"
	"time"
)

// IDSource issues task ids from a millisecond clock. Ids are strictly increasing
// within a source even when the clock stalls or moves backwards.
type IDSource struct {
	now  func() time.Time
	last int64
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Seed makes the source skip ids at or below an already issued value.
func (s *IDSource) Seed(id string) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return
	}
	if v > s.last {
		s.last = v
	}
}

func (s *IDSource) Next() string {
	v := s.now().UnixMilli()
	if v <= s.last {
		v = s.last + 1
	}
	s.last = v
	return strconv.FormatInt(v, 10)
}
