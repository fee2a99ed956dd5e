package bundled

import (
	"context"
	"runtime"

	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/opbuilder"
)

func init() {
	opbuilder.Register(AsyncIOName, func() opbuilder.Builder { return &AsyncIOBuilder{} })
}

// AsyncIOBuilder builds the asynchronous I/O extension used to stream tensors
// between NVMe storage and device memory. It requires libaio, so it is
// Linux only.
type AsyncIOBuilder struct {
	loaded bool
}

// Name implements opbuilder.Builder.
func (b *AsyncIOBuilder) Name() string { return AsyncIOName }

// IsCompatible implements opbuilder.Builder.
func (b *AsyncIOBuilder) IsCompatible() error {
	if runtime.GOOS != "linux" {
		return errors.Errorf("builder %q requires libaio and is only supported on linux, not %s", AsyncIOName, runtime.GOOS)
	}
	return nil
}

// Load implements opbuilder.Builder.
func (b *AsyncIOBuilder) Load(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	if err := b.IsCompatible(); err != nil {
		return err
	}
	if err := checkToolchain(); err != nil {
		return errors.Wrapf(err, "loading builder %q", AsyncIOName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.loaded = true
	return nil
}
