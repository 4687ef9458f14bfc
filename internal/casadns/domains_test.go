package casadns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeDomains tests domain list normalization
func TestNormalizeDomains(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "home,server",
			expected: "home,server",
		},
		{
			name:     "whitespace and case",
			input:    " Home , SERVER ",
			expected: "home,server",
		},
		{
			name:     "full hostname suffix stripped",
			input:    "home.casadns.eu,office",
			expected: "home,office",
		},
		{
			name:     "empty items dropped",
			input:    "home,,server,",
			expected: "home,server",
		},
		{
			name:     "mixed input",
			input:    " Home.casadns.eu , SERVER ,,office ",
			expected: "home,server,office",
		},
		{
			name:     "order preserved without dedup",
			input:    "b,a,b",
			expected: "b,a,b",
		},
		{
			name:     "bare suffix dropped",
			input:    ".casadns.eu,home",
			expected: "home",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only separators",
			input:    " , ,, ",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeDomains(tc.input))
		})
	}
}

// TestNormalizeDomainsIdempotent tests that normalization is stable
func TestNormalizeDomainsIdempotent(t *testing.T) {
	inputs := []string{
		" Home.casadns.eu , SERVER ,,office ",
		"home,server",
		"",
		"A.casadns.eu,b.casadns.eu",
	}

	for _, input := range inputs {
		once := NormalizeDomains(input)
		assert.Equal(t, once, NormalizeDomains(once), "input %q", input)
	}
}
