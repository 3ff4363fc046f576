package checksum_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelanford/airlift/internal/checksum"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestWriteRecord(t *testing.T) {
	path := writeFile(t, t.TempDir(), "payload.tar", []byte("payload contents"))

	rec, err := checksum.WriteRecord(path)
	require.NoError(t, err)
	assert.Equal(t, "payload.tar", rec.Subject)
	assert.Len(t, rec.Value, 64)

	data, err := os.ReadFile(checksum.RecordPath(path))
	require.NoError(t, err)
	assert.Equal(t, rec.Value+"  payload.tar\n", string(data))
}

func TestVerify(t *testing.T) {
	path := writeFile(t, t.TempDir(), "payload.tar", []byte("payload contents"))
	_, err := checksum.WriteRecord(path)
	require.NoError(t, err)

	ok, err := checksum.Verify(path)
	require.NoError(t, err)
	assert.True(t, ok)

	// Flip a single byte and the record no longer matches.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o644))

	ok, err = checksum.Verify(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MissingRecord(t *testing.T) {
	path := writeFile(t, t.TempDir(), "payload.tar", []byte("payload contents"))

	_, err := checksum.Verify(path)
	assert.ErrorIs(t, err, checksum.ErrMissingRecord)
}

func TestVerify_SubjectMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "payload.tar", []byte("payload contents"))
	rec, err := checksum.WriteRecord(path)
	require.NoError(t, err)

	// A record copied from a different file must not verify, even when the
	// digest happens to match.
	renamed := filepath.Join(dir, "renamed.tar")
	require.NoError(t, os.Rename(path, renamed))
	require.NoError(t, os.WriteFile(checksum.RecordPath(renamed), []byte(rec.String()), 0o644))

	ok, err := checksum.Verify(renamed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadRecord_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "payload.tar", []byte("payload contents"))

	for _, content := range []string{
		"",
		"justonefield\n",
		strings.Repeat("g", 64) + "  payload.tar\n", // not hex
	} {
		require.NoError(t, os.WriteFile(checksum.RecordPath(path), []byte(content), 0o644))
		_, err := checksum.ReadRecord(path)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, checksum.ErrMissingRecord)
	}
}

func TestDigest_MissingFile(t *testing.T) {
	_, err := checksum.Digest(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
