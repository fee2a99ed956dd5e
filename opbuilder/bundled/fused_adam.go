package bundled

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/opbuilder"
)

func init() {
	opbuilder.Register(FusedAdamName, func() opbuilder.Builder { return &FusedAdamBuilder{} })
}

// FusedAdamBuilder builds the fused Adam optimizer kernel.
type FusedAdamBuilder struct {
	loaded bool
}

// Name implements opbuilder.Builder.
func (b *FusedAdamBuilder) Name() string { return FusedAdamName }

// IsCompatible implements opbuilder.Builder.
func (b *FusedAdamBuilder) IsCompatible() error { return nil }

// Load implements opbuilder.Builder.
func (b *FusedAdamBuilder) Load(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	if err := checkToolchain(); err != nil {
		return errors.Wrapf(err, "loading builder %q", FusedAdamName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.loaded = true
	return nil
}
