package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cchooks/internal/verdict"
)

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, verdict.Severity(verdict.BlockingError), verdict.Severity(verdict.NonBlockingError))
	assert.Less(t, verdict.Severity(verdict.NonBlockingError), verdict.Severity(verdict.Success))
}

func TestSeverityUnknownRanksWorst(t *testing.T) {
	assert.Greater(t, verdict.Severity(verdict.Verdict("bogus")), verdict.Severity(verdict.BlockingError))
}

func TestLess(t *testing.T) {
	assert.True(t, verdict.Less(verdict.BlockingError, verdict.Success))
	assert.False(t, verdict.Less(verdict.Success, verdict.BlockingError))
}
