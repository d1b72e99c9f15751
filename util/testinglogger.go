package util

import (
	"log"
	"testing"
)

func NewTestingLogger(tb testing.TB) *CommitLogger {
	return &CommitLogger{
		Committer: func(p []byte) {
			tb.Log(string(p))
		},
		buf: nil,
	}
}

// RouteLogToTest redirects the standard logger to tb until the test ends.
func RouteLogToTest(tb testing.TB) {
	tl := NewTestingLogger(tb)
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(tl)
	log.SetFlags(log.Lmicroseconds)
	tb.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
}
