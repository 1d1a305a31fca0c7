package platforms

import (
	"testing"

	"github.com/crytic/forge-core/utils/testutils"
	"github.com/stretchr/testify/assert"
)

func TestTruffleCompilationAbsolutePath(t *testing.T) {
	// Copy our testdata over to our testing directory
	truffleDirectory := testutils.CopyToTestDirectory(t, "testdata/truffle/basic_project/")

	// Create a truffle provider
	truffleConfig := NewTruffleCompilationConfig(truffleDirectory)

	// Compile the project and ensure we didn't encounter an error
	compilations, _, err := truffleConfig.Compile()
	assert.Nil(t, err)
	assert.True(t, len(compilations) > 0)
}
