package reference_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelanford/airlift/internal/reference"
)

const busyboxDigest = "sha256:3fbc632167424a6d997e74f52b878d7cc478225cffac6bc977eedfe51c7f4e79"

func TestParse(t *testing.T) {
	type testCase struct {
		name   string
		raw    string
		expect func(*testing.T, reference.Reference, error)
	}
	for _, tc := range []testCase{
		{
			name: "repository only",
			raw:  "library/busybox",
			expect: func(t *testing.T, ref reference.Reference, err error) {
				require.NoError(t, err)
				assert.Equal(t, "library/busybox", ref.Repository)
				assert.Empty(t, ref.Tag)
				assert.Empty(t, ref.Digest)
				assert.False(t, ref.Reproducible())
			},
		},
		{
			name: "repository and tag",
			raw:  "busybox:1.36.1",
			expect: func(t *testing.T, ref reference.Reference, err error) {
				require.NoError(t, err)
				assert.Equal(t, "busybox", ref.Repository)
				assert.Equal(t, "1.36.1", ref.Tag)
				assert.False(t, ref.Reproducible())
			},
		},
		{
			name: "repository and digest",
			raw:  "busybox@" + busyboxDigest,
			expect: func(t *testing.T, ref reference.Reference, err error) {
				require.NoError(t, err)
				assert.Equal(t, "busybox", ref.Repository)
				assert.Equal(t, busyboxDigest, ref.Digest.String())
				assert.True(t, ref.Reproducible())
			},
		},
		{
			name: "repository tag and digest",
			raw:  "registry.example.io/ns/app:v1.2.3@" + busyboxDigest,
			expect: func(t *testing.T, ref reference.Reference, err error) {
				require.NoError(t, err)
				assert.Equal(t, "registry.example.io/ns/app", ref.Repository)
				assert.Equal(t, "v1.2.3", ref.Tag)
				assert.Equal(t, busyboxDigest, ref.Digest.String())
			},
		},
		{
			name: "empty",
			raw:  "",
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "repository with illegal characters",
			raw:  "busy box:latest",
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "digest with wrong length",
			raw:  "busybox@sha256:abc123",
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "digest with uppercase hex",
			raw:  "busybox@sha256:" + strings.ToUpper(strings.TrimPrefix(busyboxDigest, "sha256:")),
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "digest without algorithm prefix",
			raw:  "busybox@" + strings.TrimPrefix(busyboxDigest, "sha256:"),
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "unsupported digest algorithm",
			raw:  "busybox@sha512:" + strings.Repeat("ab", 64),
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
		{
			name: "malformed tag",
			raw:  "busybox:.bad",
			expect: func(t *testing.T, _ reference.Reference, err error) {
				assert.ErrorIs(t, err, reference.ErrInvalid)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := reference.Parse(tc.raw)
			tc.expect(t, ref, err)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"busybox",
		"busybox:1.36.1",
		"busybox@" + busyboxDigest,
		"registry.example.io/ns/app:v1.2.3@" + busyboxDigest,
	} {
		ref, err := reference.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, ref.String())
	}
}

func TestParseAll(t *testing.T) {
	refs, err := reference.ParseAll([]string{"busybox:1.36.1", "alpine:3.20"})
	require.NoError(t, err)
	assert.Equal(t, []string{"busybox:1.36.1", "alpine:3.20"}, reference.Strings(refs))

	_, err = reference.ParseAll([]string{"busybox:1.36.1", "not a ref"})
	assert.ErrorIs(t, err, reference.ErrInvalid)
}
