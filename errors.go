package amora

import (
	"errors"
	"fmt"
)

// Sentinel error kinds (§7). Callers compare with errors.Is; the core
// never swallows these — only Client.FetchAnnouncements' per-event parse
// errors are swallowed (§4.8): the malformed event is skipped and, if
// ClientConfig.OnSkippedEvent is set, reported to that callback.
var (
	// ErrInvalidFormat marks a string/URI/event parse failure: wrong
	// prefix, wrong field count, invalid hex, out-of-range felt.
	ErrInvalidFormat = errors.New("amora: invalid format")
	// ErrOutOfRange marks a felt >= 2^252, or a scalar outside [1, N-1].
	ErrOutOfRange = errors.New("amora: value out of range")
	// ErrNotOnCurve marks an x-coordinate with no corresponding curve point.
	ErrNotOnCurve = errors.New("amora: not on curve")
	// ErrZeroPoint marks an unexpected point at infinity / zero felt.
	ErrZeroPoint = errors.New("amora: zero point")
	// ErrNotRegistered marks a meta-address lookup that returned (0, 0).
	ErrNotRegistered = errors.New("amora: not registered")
	// ErrChainError wraps an opaque failure from the injected ChainClient.
	ErrChainError = errors.New("amora: chain error")
	// ErrNotImplemented marks an optional path the caller's config can't support.
	ErrNotImplemented = errors.New("amora: not implemented")
)

// wrapf builds an error that both formats like fmt.Errorf and unwraps
// to the given sentinel via errors.Is, matching the teacher's
// fmt.Errorf("...: %w", err) convention used throughout.
func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
