// Package receipt issues official receipt (OR) numbers, checks receipts
// against BIR structural rules and prints them.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

const (
	// MaxORNumber is the largest 10-digit OR number. The next number after it
	// is 1.
	MaxORNumber int64 = 9_999_999_999
	// ORNumberDigits is the zero-padded width of an OR number.
	ORNumberDigits = 10
)

// ErrSequenceOutOfRange indicates a provider returned a value outside
// [1, MaxORNumber].
var ErrSequenceOutOfRange = errors.New("receipt: sequence out of range")

// SequenceProvider hands out the next OR sequence value. Implementations
// must be safe for concurrent use and never return the same value twice
// before rollover.
type SequenceProvider interface {
	NextSequence(ctx context.Context) (int64, error)
}

// MemorySequence is an in-process provider for single-instance deployments
// and tests. Values do not survive a restart.
type MemorySequence struct {
	last atomic.Int64
}

// NewMemorySequence starts a sequence whose first value is 1.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{}
}

// NewMemorySequenceAfter starts a sequence whose first value follows last.
func NewMemorySequenceAfter(last int64) (*MemorySequence, error) {
	if last < 0 || last > MaxORNumber {
		return nil, fmt.Errorf("%w: %d", ErrSequenceOutOfRange, last)
	}
	s := &MemorySequence{}
	s.last.Store(last)
	return s, nil
}

// NextSequence implements SequenceProvider.
func (s *MemorySequence) NextSequence(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for {
		cur := s.last.Load()
		next := cur + 1
		if next > MaxORNumber {
			next = 1
		}
		if s.last.CompareAndSwap(cur, next) {
			return next, nil
		}
	}
}

// Generator formats provider values as OR numbers.
type Generator struct {
	seq SequenceProvider
}

// NewGenerator wraps a sequence provider.
func NewGenerator(seq SequenceProvider) *Generator {
	return &Generator{seq: seq}
}

// Next returns the next 10-digit OR number.
func (g *Generator) Next(ctx context.Context) (string, error) {
	n, err := g.seq.NextSequence(ctx)
	if err != nil {
		return "", fmt.Errorf("receipt: next sequence: %w", err)
	}
	return FormatORNumber(n)
}

// FormatORNumber zero-pads n to ORNumberDigits.
func FormatORNumber(n int64) (string, error) {
	if n < 1 || n > MaxORNumber {
		return "", fmt.Errorf("%w: %d", ErrSequenceOutOfRange, n)
	}
	return fmt.Sprintf("%0*d", ORNumberDigits, n), nil
}
