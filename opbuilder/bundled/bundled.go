// Package bundled ships the op builders included with GoMUSA.
//
// Importing the package (usually blank) registers every bundled builder in the
// opbuilder bundled source:
//
//	import _ "github.com/gomusa/gomusa/opbuilder/bundled"
package bundled

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Registered builder names.
const (
	AsyncIOName   = "async_io"
	FusedAdamName = "fused_adam"
	QuantizerName = "quantizer"
)

// MUSAHomeEnv points at the MUSA toolkit installation; the bundled builders
// need it to compile their native extensions.
const MUSAHomeEnv = "MUSA_HOME"

// musaCompiler is the MUSA C++ compiler driver the builders hand off to.
const musaCompiler = "mcc"

// checkToolchain verifies the native MUSA build toolchain is reachable.
func checkToolchain() error {
	if os.Getenv(MUSAHomeEnv) == "" {
		return errors.Errorf("%s is not set, cannot locate the MUSA toolkit", MUSAHomeEnv)
	}
	if _, err := exec.LookPath(musaCompiler); err != nil {
		return errors.Wrapf(err, "MUSA compiler %q not found in PATH", musaCompiler)
	}
	return nil
}
