package checksum

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/opencontainers/go-digest"
)

// RecordSuffix is appended to a file's name to derive its checksum record
// filename. The record lives in the same directory as the file it covers.
const RecordSuffix = ".sha256"

// ErrMissingRecord distinguishes "no record to verify against" from a
// checksum mismatch. Callers choose the policy for this case.
var ErrMissingRecord = errors.New("checksum record not found")

// Record is the persisted digest of a single file. Subject is the basename
// of the covered file so that records do not leak local paths.
type Record struct {
	Algorithm digest.Algorithm
	Value     string
	Subject   string
}

func (r Record) String() string {
	return fmt.Sprintf("%s  %s\n", r.Value, r.Subject)
}

// RecordPath returns the path of the record file covering path.
func RecordPath(path string) string {
	return path + RecordSuffix
}

// Digest streams the file at path through the canonical hash. The file is
// never held in memory in full.
func Digest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	defer f.Close()
	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %q: %w", path, err)
	}
	return d, nil
}

// WriteRecord computes the digest of path and persists the record next to
// it. The record file is written to a temporary name and renamed into place,
// so it is never observable half-written.
func WriteRecord(path string) (Record, error) {
	d, err := Digest(path)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Algorithm: digest.Canonical,
		Value:     d.Encoded(),
		Subject:   filepath.Base(path),
	}
	if err := renameio.WriteFile(RecordPath(path), []byte(rec.String()), 0o644); err != nil {
		return Record{}, fmt.Errorf("write checksum record for %q: %w", path, err)
	}
	return rec, nil
}

// ReadRecord parses the record file covering path.
func ReadRecord(path string) (Record, error) {
	recordPath := RecordPath(path)
	data, err := os.ReadFile(recordPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("%w: %q", ErrMissingRecord, recordPath)
		}
		return Record{}, fmt.Errorf("read checksum record %q: %w", recordPath, err)
	}
	return parseRecord(recordPath, data)
}

func parseRecord(recordPath string, data []byte) (Record, error) {
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("malformed checksum record %q: expected \"<digest>  <filename>\"", recordPath)
	}
	if err := digest.NewDigestFromEncoded(digest.Canonical, fields[0]).Validate(); err != nil {
		return Record{}, fmt.Errorf("malformed checksum record %q: %v", recordPath, err)
	}
	return Record{
		Algorithm: digest.Canonical,
		Value:     fields[0],
		Subject:   fields[1],
	}, nil
}

// Verify recomputes the digest of path and compares it against the adjacent
// record. A mismatch returns (false, nil) so that callers decide policy; a
// missing record fails with ErrMissingRecord.
func Verify(path string) (bool, error) {
	rec, err := ReadRecord(path)
	if err != nil {
		return false, err
	}
	if rec.Subject != filepath.Base(path) {
		return false, nil
	}
	d, err := Digest(path)
	if err != nil {
		return false, err
	}
	return d.Encoded() == rec.Value, nil
}
