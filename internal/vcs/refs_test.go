package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRefSingle(t *testing.T) {
	ref, err := ParseRef("main", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, RefSingle, ref.Kind)
	assert.Equal(t, "main", ref.Single)
}

func TestParseRefRanges(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		workingCopy string
		kind        RefKind
		from        string
		to          string
	}{
		{name: "two dot", raw: "a..b", workingCopy: "HEAD", kind: RefRange, from: "a", to: "b"},
		{name: "three dot", raw: "a...b", workingCopy: "HEAD", kind: RefTripleDot, from: "a", to: "b"},
		{name: "empty from", raw: "..b", workingCopy: "HEAD", kind: RefRange, from: "HEAD", to: "b"},
		{name: "empty to", raw: "a..", workingCopy: "HEAD", kind: RefRange, from: "a", to: "HEAD"},
		{name: "both empty", raw: "..", workingCopy: "HEAD", kind: RefRange, from: "HEAD", to: "HEAD"},
		{name: "jj working copy", raw: "main..", workingCopy: "@", kind: RefRange, from: "main", to: "@"},
		{name: "three dot empty ends", raw: "...", workingCopy: "@", kind: RefTripleDot, from: "@", to: "@"},
		{name: "whitespace trimmed", raw: "  a..b  ", workingCopy: "HEAD", kind: RefRange, from: "a", to: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRef(tt.raw, tt.workingCopy)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.from, ref.From)
			assert.Equal(t, tt.to, ref.To)
		})
	}
}

func TestParseRefThreeDotBeforeTwoDot(t *testing.T) {
	// "a...b" must never parse as a two-dot range from "a" to ".b".
	ref, err := ParseRef("a...b", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, RefTripleDot, ref.Kind)
	assert.Equal(t, "b", ref.To)
}

func TestParseRefRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		_, err := ParseRef(raw, "HEAD")
		assert.ErrorIs(t, err, ErrInvalidRef, "raw %q", raw)
	}
}

func TestParseRefRejectsFlagLikeRefs(t *testing.T) {
	for _, raw := range []string{"-rf", "a..-b", "-x..b", "a...-b"} {
		_, err := ParseRef(raw, "HEAD")
		assert.ErrorIs(t, err, ErrInvalidRef, "raw %q", raw)
	}
}

func TestRevisionReferenceString(t *testing.T) {
	single, err := ParseRef("abc", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "abc", single.String())

	twoDot, err := ParseRef("a..b", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "a..b", twoDot.String())

	threeDot, err := ParseRef("a...", "@")
	require.NoError(t, err)
	assert.Equal(t, "a...@", threeDot.String())
}
