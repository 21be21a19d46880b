package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())

	old := version
	t.Cleanup(func() { version = old })
	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", GetVersion())
}

func TestGetGitCommit(t *testing.T) {
	old := gitCommit
	t.Cleanup(func() { gitCommit = old })
	gitCommit = "abc123"
	assert.Equal(t, "abc123", GetGitCommit())
}

func TestDescribe(t *testing.T) {
	oldVersion, oldCommit := version, gitCommit
	t.Cleanup(func() { version, gitCommit = oldVersion, oldCommit })
	version = "v1.2.3"

	gitCommit = ""
	assert.Equal(t, "v1.2.3", Describe())

	gitCommit = "abc123"
	assert.Equal(t, "v1.2.3 (abc123)", Describe())

	gitCommit = "0123456789abcdef0123"
	assert.Equal(t, "v1.2.3 (0123456789ab)", Describe())
}
