package testutil

import "github.com/sirupsen/logrus"

func init() {
	// Test output is line-buffered by `go test`, so dates add nothing;
	// keep timestamps at microsecond resolution for interleaving
	// post-mortems.
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	if Verbose() {
		logrus.SetLevel(logrus.DebugLevel)
	}
}
