package runtime

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/sirupsen/logrus"

	"github.com/joelanford/airlift/internal/reference"
)

var _ Runtime = (*Docker)(nil)

// Docker is the production Runtime. Pulls resolve through the registry
// client; the export path writes a docker-archive tarball in which images
// share layer blobs; load and list go through the local engine API, which
// accepts gzip-compressed archives natively.
type Docker struct {
	cli client.APIClient
	log logrus.FieldLogger

	mu     sync.Mutex
	pulled map[string]v1.Image
}

func NewDocker(log logrus.FieldLogger) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Docker{
		cli:    cli,
		log:    log,
		pulled: make(map[string]v1.Image),
	}, nil
}

func (d *Docker) Name() string { return "docker" }

func (d *Docker) Pull(ctx context.Context, ref reference.Reference) error {
	d.log.WithField("image", ref.String()).Debug("pulling image")
	img, err := crane.Pull(ref.String(), crane.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("pull %q: %w", ref, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pulled[ref.String()] = img
	return nil
}

func (d *Docker) SaveMulti(ctx context.Context, refs []reference.Reference, w io.Writer) error {
	refToImage := make(map[name.Reference]v1.Image, len(refs))
	d.mu.Lock()
	for _, ref := range refs {
		img, ok := d.pulled[ref.String()]
		if !ok {
			d.mu.Unlock()
			return fmt.Errorf("image %q was not pulled before export", ref)
		}
		parsed, err := name.ParseReference(ref.String())
		if err != nil {
			d.mu.Unlock()
			return fmt.Errorf("parse %q for export: %w", ref, err)
		}
		refToImage[parsed] = img
	}
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tarball.MultiRefWrite(refToImage, w); err != nil {
		return fmt.Errorf("export %d images: %w", len(refs), err)
	}
	return nil
}

func (d *Docker) LoadArchive(ctx context.Context, r io.Reader) error {
	resp, err := d.cli.ImageLoad(ctx, r, true)
	if err != nil {
		return fmt.Errorf("load archive into docker: %w", err)
	}
	defer resp.Body.Close()
	// The engine streams progress; drain it so the load completes.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("read docker load response: %w", err)
	}
	return nil
}

func (d *Docker) ListImages(ctx context.Context) ([]string, error) {
	summaries, err := d.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list docker images: %w", err)
	}
	var out []string
	for _, s := range summaries {
		out = append(out, s.RepoTags...)
		out = append(out, s.RepoDigests...)
	}
	sort.Strings(out)
	return out, nil
}
