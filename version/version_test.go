package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	assert.Equal(t, "azsku dev (commit abc, built now)", Info{Version: "dev", CommitHash: "abc", BuildTime: "now"}.String())
	assert.Equal(t, "azsku 1.2.0 (commit 0123456, built now)", Info{Version: "1.2.0", CommitHash: "0123456789ab", BuildTime: "now"}.String())
}

func TestInfoShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		stored, current string
		want            bool
	}{
		{"dev", "dev", true},
		{"dev", "1.0.0", false},
		{"1.0.0", "dev", false},
		{"1.2.0", "1.2.0", true},
		{"1.2.0", "1.4.1", true},
		{"v1.2.0", "1.3.0", true},
		{"1.4.0", "1.2.0", false},
		{"1.2.0", "2.0.0", false},
		{"garbage", "1.0.0", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compatible(tt.stored, tt.current), "%s -> %s", tt.stored, tt.current)
	}
}
