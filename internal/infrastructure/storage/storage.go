// Package storage provides the output storages captures are written to.
package storage

import (
	"fmt"
	"strings"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
)

// ErrInvalidName is returned for names that are empty or contain path elements
var ErrInvalidName = shared.NewDomainError("INVALID_NAME", "Invalid output file name")

// validateName rejects anything but a plain file name
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", shared.ErrNotFound, name)
}
