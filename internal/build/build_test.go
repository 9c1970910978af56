package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildString(t *testing.T) {
	assert.Equal(t, "dev", Build{Version: "dev"}.String())
	assert.Equal(t, "v1.0.0 (abc123)", Build{Version: "v1.0.0", Commit: "abc123"}.String())
}
