package shared

import (
	"fmt"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

// SequenceIDs issues Prefix-1, Prefix-2, ... and is safe for concurrent use.
type SequenceIDs struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}

// AuditInfo records when an aggregate was created and last changed.
type AuditInfo struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAuditInfo(now time.Time) AuditInfo {
	return AuditInfo{CreatedAt: now, UpdatedAt: now}
}

func (a AuditInfo) Touch(now time.Time) AuditInfo {
	a.UpdatedAt = now
	return a
}
