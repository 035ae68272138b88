package logging

import "strings"

// ProgressSampler suppresses repetitive download progress logs while keeping
// a line per percentage bucket and per bundle.
type ProgressSampler struct {
	bucketSize float64
	lastItem   string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%) or when the item changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. Percent can be
// negative to indicate "unknown".
func (s *ProgressSampler) ShouldLog(percent float64, item string) bool {
	if s == nil {
		return true
	}
	item = strings.TrimSpace(item)
	emit := false
	if item != "" && item != s.lastItem {
		s.lastItem = item
		s.lastBucket = -1
		emit = true
	}
	if percent >= 0 {
		bucket := int(min(percent, 100) / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastItem = ""
	s.lastBucket = -1
}

// Percent converts a byte count into a percentage, or -1 when total is unknown.
func Percent(done, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(done) * 100 / float64(total)
}
