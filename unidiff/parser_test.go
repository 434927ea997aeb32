package unidiff_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitstack"
	"commitstack/unidiff"
)

const modifiedFileDiff = `diff --git a/main.go b/main.go
index 1234567..abcdefg 100644
--- a/main.go
+++ b/main.go
@@ -1,5 +1,6 @@
 package main

 func main() {
-	println("hello")
+	println("hello world")
+	println("goodbye")
 }
`

const twoFileDiff = `diff --git a/new_file.py b/new_file.py
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/new_file.py
@@ -0,0 +1,7 @@
+def func_a():
+    return 1
+
+
+def func_b():
+    return 2
+
diff --git a/existing_file.py b/existing_file.py
index 1111111..2222222 100644
--- a/existing_file.py
+++ b/existing_file.py
@@ -1,6 +1,10 @@
 def main():
-    print("old")
+    print("new")


+def helper():
+    return 3
+
+
 def end():
     pass
`

func TestParser_Parse_EmptyInput(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	files, warnings := p.Parse("")

	assert.Empty(t, files)
	assert.Empty(t, warnings)
}

func TestParser_Parse_ModifiedFile(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	files, warnings := p.Parse(modifiedFileDiff)

	require.Len(t, files, 1)
	assert.Empty(t, warnings)

	f := files[0]
	assert.Equal(t, "main.go", f.FilePath)
	assert.Empty(t, f.OldPath)
	assert.False(t, f.IsRenamed)
	assert.False(t, f.IsBinary)
	assert.False(t, f.IsNewFile)
	assert.Equal(t, []string{
		"diff --git a/main.go b/main.go",
		"index 1234567..abcdefg 100644",
		"--- a/main.go",
		"+++ b/main.go",
	}, f.DiffHeaderLines)

	require.Len(t, f.Hunks, 1)
	h := f.Hunks[0]
	assert.Equal(t, "@@ -1,5 +1,6 @@", h.Header)
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 5, h.OldLen)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 6, h.NewLen)
	assert.Equal(t, h.Header, h.Lines[0])
}

func TestParser_Parse_HunkIDFormat(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	files, _ := p.Parse(twoFileDiff)

	require.Len(t, files, 2)
	require.Len(t, files[0].Hunks, 1)
	require.Len(t, files[1].Hunks, 1)

	idRe := regexp.MustCompile(`^H\d+_[0-9a-f]{6}$`)
	assert.Regexp(t, idRe, files[0].Hunks[0].ID)
	assert.Regexp(t, idRe, files[1].Hunks[0].ID)

	// The counter runs across the whole diff, not per file.
	assert.True(t, strings.HasPrefix(files[0].Hunks[0].ID, "H1_"))
	assert.True(t, strings.HasPrefix(files[1].Hunks[0].ID, "H2_"))
}

func TestParser_Parse_IDStability(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	first, _ := p.Parse(twoFileDiff)
	second, _ := p.Parse(twoFileDiff)

	require.Len(t, second, len(first))
	for i := range first {
		require.Len(t, second[i].Hunks, len(first[i].Hunks))
		for j := range first[i].Hunks {
			assert.Equal(t, first[i].Hunks[j].ID, second[i].Hunks[j].ID)
		}
	}
}

func TestParser_Parse_IDUniqueness(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	files, _ := p.Parse(twoFileDiff)

	seen := map[string]bool{}
	for _, f := range files {
		for _, h := range f.Hunks {
			assert.False(t, seen[h.ID], "duplicate hunk id %s", h.ID)
			seen[h.ID] = true
		}
	}
}

func TestParser_Parse_RoundTrip(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	for name, input := range map[string]string{
		"modified": modifiedFileDiff,
		"two file": twoFileDiff,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			files, _ := p.Parse(input)

			var lines []string
			for _, f := range files {
				lines = append(lines, f.DiffHeaderLines...)
				for _, h := range f.Hunks {
					lines = append(lines, h.Lines...)
				}
			}
			assert.Equal(t, input, strings.Join(lines, "\n"))
		})
	}
}

func TestParser_Parse_BinaryFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/img.png b/img.png
new file mode 100644
index 0000000..abc1234
Binary files /dev/null and b/img.png differ
`

	p := unidiff.NewParser()

	files, warnings := p.Parse(input)

	require.Len(t, files, 1)
	assert.True(t, files[0].IsBinary)
	assert.Empty(t, files[0].Hunks)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "img.png")
}

func TestParser_Parse_RenamedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/old.go b/new.go
similarity index 90%
rename from old.go
rename to new.go
--- a/old.go
+++ b/new.go
@@ -1 +1 @@
-a
+b
`

	p := unidiff.NewParser()

	files, _ := p.Parse(input)

	require.Len(t, files, 1)
	assert.True(t, files[0].IsRenamed)
	assert.Equal(t, "old.go", files[0].OldPath)
	assert.Equal(t, "new.go", files[0].FilePath)
	require.Len(t, files[0].Hunks, 1)
}

func TestParser_Parse_ModeChangeOnly(t *testing.T) {
	t.Parallel()

	input := `diff --git a/script.sh b/script.sh
old mode 100644
new mode 100755
`

	p := unidiff.NewParser()

	files, warnings := p.Parse(input)

	require.Len(t, files, 1)
	assert.Empty(t, files[0].Hunks)
	assert.False(t, files[0].IsBinary)
	assert.Empty(t, warnings)
}

func TestParser_Parse_MalformedHunkHeaderDropped(t *testing.T) {
	t.Parallel()

	input := `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ not a valid header @@
-x
+y
@@ -1,2 +1,2 @@
 context
-x
+y
`

	p := unidiff.NewParser()

	files, _ := p.Parse(input)

	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 1)
	assert.Equal(t, "@@ -1,2 +1,2 @@", files[0].Hunks[0].Header)
}

func TestParser_Parse_LengthDefaultsToOne(t *testing.T) {
	t.Parallel()

	input := `diff --git a/a.txt b/a.txt
index 1111111..2222222 100644
--- a/a.txt
+++ b/a.txt
@@ -3 +3 @@
-x
+y
`

	p := unidiff.NewParser()

	files, _ := p.Parse(input)

	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 1)
	h := files[0].Hunks[0]
	assert.Equal(t, 3, h.OldStart)
	assert.Equal(t, 1, h.OldLen)
	assert.Equal(t, 3, h.NewStart)
	assert.Equal(t, 1, h.NewLen)
}

func TestParser_Parse_TwoFileScenario(t *testing.T) {
	t.Parallel()

	p := unidiff.NewParser()

	files, _ := p.Parse(twoFileDiff)

	require.Len(t, files, 2)
	assert.True(t, files[0].IsNewFile)
	assert.Len(t, files[0].Hunks, 1)
	assert.False(t, files[1].IsNewFile)
	assert.Len(t, files[1].Hunks, 1)

	inv := commitstack.BuildInventory(files)
	assert.Equal(t, 2, inv.Len())
}
