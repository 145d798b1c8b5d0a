package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "Alice"},
		{"AC/DC fans", "AC_DC fans"},
		{`a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"tab\there", "tab_here"},
		{"..", "conversation"},
		{"", "conversation"},
		{"  trip. ", "trip"},
		{"José", "José"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFileName(tt.in))
		})
	}
}

func TestFileNamerDeduplicates(t *testing.T) {
	n := newFileNamer()

	assert.Equal(t, "Alice", n.Name("Alice"))
	assert.Equal(t, "Alice (2)", n.Name("Alice"))
	assert.Equal(t, "alice (3)", n.Name("alice"))
	assert.Equal(t, "Bob", n.Name("Bob"))
	assert.Equal(t, "A_B", n.Name("A/B"))
	assert.Equal(t, "A_B (2)", n.Name("A:B"))
}

func TestFileNamerSkipsTakenSuffixes(t *testing.T) {
	n := newFileNamer()

	assert.Equal(t, "Alice (2)", n.Name("Alice (2)"))
	assert.Equal(t, "Alice", n.Name("Alice"))
	assert.Equal(t, "Alice (3)", n.Name("Alice"))
	assert.Equal(t, "Alice (2) (2)", n.Name("alice (2)"))
}
