// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies rule violations raised by the engine.
// Every rejection aborts the whole transition; the caller gets the kind
// plus enough context to correct the request and resubmit.
type ErrorKind string

const (
	ErrUnauthorized         ErrorKind = "unauthorized"
	ErrUserBlocked          ErrorKind = "user_blocked"
	ErrUserNotAllowed       ErrorKind = "user_not_allowed"
	ErrPositionNotFound     ErrorKind = "position_not_found"
	ErrInsufficientStake    ErrorKind = "insufficient_stake"
	ErrDurationTierNotFound ErrorKind = "duration_tier_not_found"
	ErrLockNotMatured       ErrorKind = "lock_not_matured"
	ErrArithmeticOverflow   ErrorKind = "arithmetic_overflow"
	ErrZeroAmount           ErrorKind = "zero_amount"
	ErrInvalidRequest       ErrorKind = "invalid_request"
	ErrInvalidConfig        ErrorKind = "invalid_config"
)

// Error is a rule violation with a kind and human-readable context.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of an engine error, or empty string for
// non-engine errors (storage faults and the like).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
