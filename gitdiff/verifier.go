// Package gitdiff verifies reconstructed patches using bluekeyes/go-gitdiff.
package gitdiff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"commitstack"
)

// Compile-time interface verification.
var _ commitstack.PatchVerifier = (*Verifier)(nil)

// Verifier checks that patch text is a parseable unified diff before it is
// handed to git apply. Catching a malformed reconstruction here turns an
// opaque git failure mid-execution into a typed error before the index is
// touched.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify parses the patch text and confirms it contains at least one file.
func (v *Verifier) Verify(patchText string) error {
	files, _, err := gitdiff.Parse(strings.NewReader(patchText))
	if err != nil {
		return fmt.Errorf("patch is not a valid unified diff: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("patch contains no file changes")
	}
	return nil
}
