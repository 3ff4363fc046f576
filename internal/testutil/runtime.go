package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/joelanford/airlift/internal/reference"
	"github.com/joelanford/airlift/internal/runtime"
)

var _ runtime.Runtime = (*FakeRuntime)(nil)

// FakeRuntime is an in-memory runtime.Runtime for tests. Pull failures are
// scripted per reference; every call is recorded.
type FakeRuntime struct {
	RuntimeName string

	// PullErrs maps a reference string to a queue of errors returned by
	// successive Pull calls. Once drained, Pull succeeds.
	PullErrs map[string][]error

	// ArchiveContent is written by SaveMulti. When nil, SaveMulti writes a
	// deterministic payload derived from the reference list.
	ArchiveContent []byte

	SaveErr error
	LoadErr error
	ListErr error

	// Images is returned by ListImages.
	Images []string

	mu        sync.Mutex
	Pulled    []string
	SaveCalls int
	Loaded    [][]byte
}

func (f *FakeRuntime) Name() string {
	if f.RuntimeName == "" {
		return "fake"
	}
	return f.RuntimeName
}

func (f *FakeRuntime) Pull(_ context.Context, ref reference.Reference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if errs := f.PullErrs[ref.String()]; len(errs) > 0 {
		err := errs[0]
		f.PullErrs[ref.String()] = errs[1:]
		return err
	}
	f.Pulled = append(f.Pulled, ref.String())
	return nil
}

func (f *FakeRuntime) SaveMulti(_ context.Context, refs []reference.Reference, w io.Writer) error {
	f.mu.Lock()
	f.SaveCalls++
	f.mu.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	content := f.ArchiveContent
	if content == nil {
		content = []byte("archive:" + strings.Join(reference.Strings(refs), ","))
	}
	_, err := w.Write(content)
	return err
}

func (f *FakeRuntime) LoadArchive(_ context.Context, r io.Reader) error {
	if f.LoadErr != nil {
		return f.LoadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.Loaded = append(f.Loaded, data)
	f.mu.Unlock()
	return nil
}

func (f *FakeRuntime) ListImages(context.Context) ([]string, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Images, nil
}
