package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a persistence failure without reinterpreting it; the
// original error stays reachable through Unwrap.
type Kind int

const (
	// KindOther covers failures with no more specific classification.
	KindOther Kind = iota

	// KindConstraint is an integrity-constraint violation, most notably a
	// duplicate slug or identifier.
	KindConstraint

	// KindConnectivity is a connection-level failure.
	KindConnectivity

	// KindTimeout is a cancelled or timed-out statement.
	KindTimeout

	// KindCorrupt indicates a stored value that violates its own
	// invariants, e.g. an identifier column of the wrong width.
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindConstraint:
		return "constraint"
	case KindConnectivity:
		return "connectivity"
	case KindTimeout:
		return "timeout"
	case KindCorrupt:
		return "corrupt"
	default:
		return "other"
	}
}

// PersistError wraps a failure from the underlying store. Callers can
// switch on Kind or unwrap the cause; the store never retries on its own.
type PersistError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// wrapPersist classifies err and wraps it with the operation name.
func wrapPersist(op string, err error) error {
	return &PersistError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return KindConstraint
		case pgErr.Code == "57014":
			return KindTimeout
		case strings.HasPrefix(pgErr.Code, "08"):
			return KindConnectivity
		}
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnectivity
	}

	return KindOther
}
