package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	v1 "github.com/joelanford/airlift/api/v1"
	"github.com/joelanford/airlift/internal/checksum"
)

// InspectBundle prints a bundle's manifest and the verification status of
// its archive without loading anything. Read-only.
type InspectBundle struct {
	Dir    string
	Output io.Writer
}

type inspectReport struct {
	Manifest *v1.Manifest `json:"manifest"`

	// ChecksumStatus is "verified", "mismatch", or "missing-record".
	ChecksumStatus string `json:"checksumStatus"`
}

func (a *InspectBundle) Run(_ context.Context) error {
	m, err := v1.Load(filepath.Join(a.Dir, v1.ManifestFilename))
	if err != nil {
		return err
	}

	status := "verified"
	ok, err := checksum.Verify(filepath.Join(a.Dir, m.Archive))
	switch {
	case errors.Is(err, checksum.ErrMissingRecord):
		status = "missing-record"
	case err != nil:
		return err
	case !ok:
		status = "mismatch"
	}

	data, err := json.MarshalIndent(inspectReport{Manifest: m, ChecksumStatus: status}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.Output, string(data))
	return err
}
