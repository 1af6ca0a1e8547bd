package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBranchName(t *testing.T) {
	valid := []string{"main", "master", "feature/auto-push", "release-1.2"}
	for _, branch := range valid {
		t.Run("Should accept "+branch, func(t *testing.T) {
			assert.NoError(t, ValidateBranchName(branch))
		})
	}
	invalid := []string{"", "/main", "main/", "a..b", "main.lock", "-main", "with space", strings.Repeat("a", 256)}
	for _, branch := range invalid {
		t.Run("Should reject "+branch, func(t *testing.T) {
			assert.Error(t, ValidateBranchName(branch))
		})
	}
}

func TestValidateRemoteName(t *testing.T) {
	t.Run("Should accept common remote names", func(t *testing.T) {
		assert.NoError(t, ValidateRemoteName("origin"))
		assert.NoError(t, ValidateRemoteName("upstream-2"))
	})
	t.Run("Should reject unsafe remote names", func(t *testing.T) {
		assert.Error(t, ValidateRemoteName(""))
		assert.Error(t, ValidateRemoteName("-origin"))
		assert.Error(t, ValidateRemoteName("my/remote"))
	})
}
