package testutil

import "os"

// Verbose reports whether the test binary was invoked with DEBUG=1 in
// its environment. Tests use it to gate extra logging of the
// interleaving they drove, since a failure in a concurrent test is
// often only diagnosable from a blow-by-blow trace.
func Verbose() bool {
	return os.Getenv("DEBUG") == "1"
}
