package gitdiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitstack/gitdiff"
)

const validPatch = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+
 func main() {
 }
`

func TestVerifier_Verify_ValidPatch(t *testing.T) {
	t.Parallel()

	err := gitdiff.NewVerifier().Verify(validPatch)

	assert.NoError(t, err)
}

func TestVerifier_Verify_Empty(t *testing.T) {
	t.Parallel()

	err := gitdiff.NewVerifier().Verify("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file changes")
}

func TestVerifier_Verify_ProseOnly(t *testing.T) {
	t.Parallel()

	err := gitdiff.NewVerifier().Verify("this is not a diff\njust some text\n")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file changes")
}

func TestVerifier_Verify_TruncatedHunk(t *testing.T) {
	t.Parallel()

	truncated := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
`

	err := gitdiff.NewVerifier().Verify(truncated)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid unified diff")
}
