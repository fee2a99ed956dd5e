//go:build cuda

package _default

import _ "github.com/gomusa/gomusa/accelerators/cuda"
