package main

import "github.com/pkg/errors"

// wrapf attaches context to an I/O-layer error (it is used when
// opening a --script file; read errors from the script are returned
// unwrapped). The tree package's own errors are left as the bare
// syscall.Errno sentinels spec.md §7 names — those get formatted
// directly by commandError, not wrapped, since wrapping would break
// callers comparing them with errors.Is/==.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
