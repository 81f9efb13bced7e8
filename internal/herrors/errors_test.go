package herrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeOOM, "address provider refused to extend", 4096)
	assert.Equal(t, "mmheap error [out_of_memory]: address provider refused to extend (size=4096)", err.Error())
}

func TestCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown", Code(99).String())
}
