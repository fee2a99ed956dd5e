package bundled

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/opbuilder"
)

func init() {
	opbuilder.Register(QuantizerName, func() opbuilder.Builder { return &QuantizerBuilder{} })
}

// QuantizerBuilder builds the weight/activation quantization kernels.
type QuantizerBuilder struct {
	loaded bool
}

// Name implements opbuilder.Builder.
func (b *QuantizerBuilder) Name() string { return QuantizerName }

// IsCompatible implements opbuilder.Builder.
func (b *QuantizerBuilder) IsCompatible() error { return nil }

// Load implements opbuilder.Builder.
func (b *QuantizerBuilder) Load(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	if err := checkToolchain(); err != nil {
		return errors.Wrapf(err, "loading builder %q", QuantizerName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.loaded = true
	return nil
}
