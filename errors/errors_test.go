package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndAccessors(t *testing.T) {
	err := New(DeployFailed, "constructor reverted")
	assert.Equal(t, "constructor reverted", err.Error())
	assert.Equal(t, "constructor reverted", err.Reason())
	assert.Equal(t, DeployFailed, err.Kind())
}

func TestNewf(t *testing.T) {
	err := Newf(AssertionFailed, "test %s failed with code %d", "testWithdraw", 42)
	assert.Equal(t, "test testWithdraw failed with code 42", err.Error())
	assert.Equal(t, AssertionFailed, err.Kind())
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := stderrors.New("out of gas")
	err := Wrap(SetUpFailed, cause, "setUp failed for %s", "MyContract")

	assert.Equal(t, "setUp failed for MyContract", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestKindOfAndIs(t *testing.T) {
	err := New(ForkTimeout, "fork RPC did not respond in time")

	assert.Equal(t, ForkTimeout, KindOf(err))
	assert.True(t, Is(err, ForkTimeout))
	assert.False(t, Is(err, ForkFetchFailed))
}

func TestKindOfNonTestErrorIsEmpty(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain error")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsFalseForNonTestError(t *testing.T) {
	assert.False(t, Is(stderrors.New("plain error"), BackendInternal))
}
