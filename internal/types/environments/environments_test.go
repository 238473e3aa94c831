package environments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := map[string]Environment{
		"production":  Production,
		" Staging ":   Staging,
		"test":        Test,
		"development": Development,
		"":            Development,
		"qa":          Development,
	}
	for in, want := range tests {
		assert.Equal(t, want, Parse(in), in)
	}

	assert.True(t, Production.IsDeployed())
	assert.True(t, Staging.IsDeployed())
	assert.False(t, Development.IsDeployed())
	assert.False(t, Test.IsDeployed())
}
