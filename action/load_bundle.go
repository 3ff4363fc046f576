package action

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/joelanford/airlift/internal/bundle"
	"github.com/joelanford/airlift/internal/runtime"
)

type LoadBundle struct {
	// Path is a bundle directory or a bare archive file.
	Path            string
	Runtime         runtime.Runtime
	VerifyAfterLoad bool

	Log logrus.FieldLogger
}

func (a *LoadBundle) Run(ctx context.Context) (*bundle.Result, error) {
	loader := bundle.Loader{
		Runtime:         a.Runtime,
		VerifyAfterLoad: a.VerifyAfterLoad,
		Log:             a.Log,
	}
	return loader.Load(ctx, a.Path)
}
