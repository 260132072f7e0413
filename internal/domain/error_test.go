package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Formatting(t *testing.T) {
	full := Errorf(CodeInvalidArguments, "pg.query", "only SELECT is allowed")
	assert.Equal(t, "pg.query: INVALID_ARGUMENTS: only SELECT is allowed", full.Error())

	noOp := &Error{Code: CodeBackendError, Message: "boom"}
	assert.Equal(t, "BACKEND_ERROR: boom", noOp.Error())

	noMsg := &Error{Code: CodeDiscoveryFailed, Op: "discovery.refresh"}
	assert.Equal(t, "discovery.refresh: DISCOVERY_FAILED", noMsg.Error())

	bare := &Error{Code: CodeToolNotFound}
	assert.Equal(t, "TOOL_NOT_FOUND", bare.Error())
}

func TestError_MessageFallsBackToCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := E(CodeBackendUnavailable, "backend.do", "", cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(CodeBackendError, "op", nil))

	plain := errors.New("oops")
	wrapped := Wrap(CodeBackendError, "backend.do", plain)
	assert.Equal(t, CodeBackendError, wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)

	// An already-classified error keeps its original code.
	classified := Errorf(CodeAmbiguousTarget, "dockerctl.find", "ambiguous")
	rewrapped := Wrap(CodeBackendError, "outer", classified)
	assert.Equal(t, CodeAmbiguousTarget, rewrapped.Code)
	assert.Equal(t, "dockerctl.find", rewrapped.Op)

	// A classified error without an op picks up the wrapping op.
	opless := &Error{Code: CodeConfiguration, Message: "bad port"}
	adopted := Wrap(CodeBackendError, "config.load", opless)
	assert.Equal(t, CodeConfiguration, adopted.Code)
	assert.Equal(t, "config.load", adopted.Op)
}

func TestCodeFrom(t *testing.T) {
	assert.Equal(t, CodeInvalidArguments, CodeFrom(Errorf(CodeInvalidArguments, "op", "bad")))
	assert.Equal(t, CodeBackendError, CodeFrom(errors.New("anything")))

	var err error = E(CodeDiscoveryFailed, "discovery.refresh", "", errors.New("500"))
	require.Error(t, err)
	assert.Equal(t, CodeDiscoveryFailed, CodeFrom(err))
}
