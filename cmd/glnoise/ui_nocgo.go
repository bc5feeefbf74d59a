//go:build tinygo || !cgo

package main

import (
	"errors"

	"github.com/soypat/glproc/gleval"
)

func ui(ks gleval.KernelSpec, cfg config) error {
	return errors.New("require cgo for UI rendering")
}
