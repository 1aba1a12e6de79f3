// Package errs defines the control plane's error taxonomy (spec.md §7):
// HARD_BLOCK, CRITICAL_STATE_DRIFT, STREAM_FAILURE, SEQUENCE_GAP,
// REPLAY_DIVERGENCE, and MALFORMED_JOURNAL. Each is a sentinel wrapped
// with github.com/pkg/errors so callers can recover the category with
// errors.Cause regardless of how many layers of context wrap it, the same
// pattern the teacher uses throughout broker/append_fsm.go and
// consumer/resolver.go.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Category sentinels. Compare with errors.Cause(err) == errs.HardBlock.
var (
	HardBlock         = errors.New("HARD_BLOCK")
	CriticalDrift     = errors.New("CRITICAL_STATE_DRIFT")
	StreamFailure     = errors.New("STREAM_FAILURE")
	SequenceGap       = errors.New("SEQUENCE_GAP")
	ReplayDivergence  = errors.New("REPLAY_DIVERGENCE")
	MalformedJournal  = errors.New("MALFORMED_JOURNAL")
)

// causer wraps a category sentinel with a human-readable reason, and an
// optional grpc status code used purely as a structured taxonomy — no
// gRPC transport is involved (see SPEC_FULL.md's Ambient Stack section).
type causer struct {
	category error
	code     codes.Code
	reason   string
}

func (c *causer) Error() string { return fmt.Sprintf("%s: %s", c.category, c.reason) }
func (c *causer) Cause() error  { return c.category }
func (c *causer) Unwrap() error { return c.category }

// Code returns the structured grpc status code associated with err, if
// it was constructed by one of this package's New* functions.
func Code(err error) codes.Code {
	var c *causer
	if errors.As(err, &c) {
		return c.code
	}
	return codes.Unknown
}

// NewHardBlock constructs a HARD_BLOCK failure with a human-readable
// reason. HARD_BLOCK never mutates state — callers must treat it as a
// pure rejection of the submission.
func NewHardBlock(reason string) error {
	return &causer{category: HardBlock, code: codes.FailedPrecondition, reason: reason}
}

// NewCriticalDrift constructs a CRITICAL_STATE_DRIFT failure for the
// given symbol and internal/exchange quantities.
func NewCriticalDrift(symbol, internal, exchange string) error {
	return &causer{
		category: CriticalDrift,
		code:     codes.DataLoss,
		reason:   fmt.Sprintf("symbol=%s internal=%s exchange=%s", symbol, internal, exchange),
	}
}

// NewStreamFailure wraps an ingestor stream error for propagation out of
// the Observer pipeline, triggering a HALT transition.
func NewStreamFailure(source string, cause error) error {
	return errors.Wrapf(&causer{category: StreamFailure, code: codes.Unavailable, reason: source}, "stream failure: %v", cause)
}

// NewMalformedJournal wraps a journal parse failure. MALFORMED_JOURNAL
// always fails the whole replay run; it is never silently skipped.
func NewMalformedJournal(path string, line int, cause error) error {
	return errors.Wrapf(
		&causer{category: MalformedJournal, code: codes.DataLoss, reason: fmt.Sprintf("%s:%d", path, line)},
		"malformed journal record: %v", cause,
	)
}

// ToGRPCStatus renders err as a *status.Status using the taxonomy code,
// useful for any boundary that wants to surface HARD_BLOCK etc. over a
// gRPC-shaped error without this module standing up a gRPC server.
func ToGRPCStatus(err error) *status.Status {
	return status.New(Code(err), err.Error())
}
