package proc

import (
	"errors"
	"fmt"
	"syscall"
)

// NotFoundError reports that a process vanished before its stat record
// could be read. Enumeration swallows these (a vanished pid is normal
// churn); direct lookups surface them.
type NotFoundError struct {
	PID int    // 0 when the pid was not known yet (path lookups)
	Dir string // the /proc entry that was probed
	Err error  // underlying cause, may be nil
}

func (e *NotFoundError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("process %d not found", e.PID)
	}
	return fmt.Sprintf("no process at %s", e.Dir)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// DecodeError reports that a stat record was read but does not match the
// expected fixed layout. This is never swallowed: it means the decoder's
// assumptions are wrong for this system.
type DecodeError struct {
	Dir    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed stat record in %s: %s", e.Dir, e.Reason)
}

// PermissionError reports that a secondary record (exe link, environ,
// status) was unreadable due to access control. Attribute resolution
// downgrades these to fallback-tier values internally; the type surfaces
// only from operations where partial data is not an option.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied reading %s", e.Path)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// SignalError reports a signal delivery failure for a reason other than
// the target having already exited (already-exited is a benign no-op).
type SignalError struct {
	PID int
	Sig syscall.Signal
	Err error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("cannot send %s to process %d: %v", e.Sig, e.PID, e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsSignal reports whether err is a SignalError.
func IsSignal(err error) bool {
	var se *SignalError
	return errors.As(err, &se)
}

// readOutcome classifies an error from reading a secondary record.
type readOutcome int

const (
	readOK readOutcome = iota
	readVanished
	readDenied
)

// classifyReadError maps an error from a per-process file read onto the
// decoder's handling tiers. ENOENT and ESRCH mean the process went away
// (race, count it); EACCES and EPERM mean access control (fallback tier,
// not a race). Anything else is treated like a vanished record so a scan
// can never crash on an exotic errno.
func classifyReadError(err error) readOutcome {
	if err == nil {
		return readOK
	}
	if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		return readDenied
	}
	return readVanished
}
