package roomcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quickpick/internal/roomcode"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := roomcode.Generate()

		require.Len(t, code, roomcode.Length)
		for _, r := range code {
			require.Contains(t, roomcode.Alphabet, string(r), "code %q uses a forbidden character", code)
		}
		require.True(t, roomcode.IsValid(code), "generated code %q should be valid", code)
	}
}

func TestIsValid(t *testing.T) {
	tests := map[string]struct {
		code string
		want bool
	}{
		"upper case code":          {code: "AB23", want: true},
		"lower case code":          {code: "ab23", want: true},
		"empty":                    {code: "", want: false},
		"too short":                {code: "AB2", want: false},
		"too long":                 {code: "AB234", want: false},
		"contains zero":            {code: "AB20", want: false},
		"contains letter O":        {code: "ABO2", want: false},
		"contains one":             {code: "AB21", want: false},
		"contains letter I":        {code: "ABI2", want: false},
		"contains letter L":        {code: "ABL2", want: false},
		"contains symbol":          {code: "AB2!", want: false},
		"all digits from alphabet": {code: "2345", want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, roomcode.IsValid(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "AB23", roomcode.Normalize("ab23"))
	assert.Equal(t, roomcode.Normalize("AB23"), roomcode.Normalize("ab23"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "A B 2 3", roomcode.Format("ab23"))
	assert.Equal(t, "A B 2 3", roomcode.Format("AB23"))
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "quickpick://join/AB23", roomcode.DeepLink("ab23"))
}

func TestNewIDs(t *testing.T) {
	const n = 200

	seen := make(map[string]bool, 2*n)
	for i := 0; i < n; i++ {
		pid := roomcode.NewParticipantID()
		sid := roomcode.NewSessionID()

		require.True(t, strings.HasPrefix(pid, "p_"), "participant id %q should carry p_ prefix", pid)
		require.True(t, strings.HasPrefix(sid, "s_"), "session id %q should carry s_ prefix", sid)

		require.False(t, seen[pid], "duplicate participant id %q", pid)
		require.False(t, seen[sid], "duplicate session id %q", sid)
		seen[pid], seen[sid] = true, true
	}
}
