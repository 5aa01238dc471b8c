package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyannotate/internal/annotation"
	"fyannotate/internal/service"
	"fyannotate/internal/session"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB returns the path of a fresh session database in a temp dir.
func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_session.db")
	db, err := session.Open(dbPath, nil)
	require.NoError(t, err, "setupTestDB: failed to initialize test database at %s", dbPath)
	require.NoError(t, db.Close())
	return dbPath
}

// executeCommandC executes a cobra command and captures its output.
func executeCommandC(root *cobra.Command, args ...string) (string, string, error) {
	dryRunFlag = false

	actualStdout := new(bytes.Buffer)
	actualStderr := new(bytes.Buffer)
	root.SetOut(actualStdout)
	root.SetErr(actualStderr)
	root.SetArgs(args)

	err := root.Execute()

	return actualStdout.String(), actualStderr.String(), err
}

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	stdout, stderr, err := executeCommandC(NewRootCmd(session.Open), append([]string{"--dbpath", dbPath}, args...)...)
	if err != nil {
		t.Logf("stderr: %s", stderr)
	}
	return stdout, err
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = 0xff // opaque white
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeStore(t *testing.T, s annotation.Store) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotations.json")
	require.NoError(t, annotation.SaveFile(path, s))
	return path
}

func sampleStore() annotation.Store {
	return annotation.Store{
		"b.png": {{X0: 1, Y0: 2, X1: 3, Y1: 4}, {X0: 40, Y0: 30, X1: 10, Y1: 5}},
		"a.jpg": {{X0: 0, Y0: 0, X1: 100, Y1: 100}},
	}
}

func TestRootHelp(t *testing.T) {
	stdout, stderr, err := executeCommandC(NewRootCmd(session.Open), "--help")
	require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "fyannotate-cli [command]")
}

func TestImagesCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	dir := t.TempDir()
	for _, n := range []string{"b.png", "a.jpg", "c.PNG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}

	stdout, err := run(t, dbPath, "images", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}, lines)

	t.Run("empty directory", func(t *testing.T) {
		empty := t.TempDir()
		stdout, err := run(t, dbPath, "images", empty)
		require.NoError(t, err)
		assert.Contains(t, stdout, "No images found in "+empty)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := run(t, dbPath, "images", filepath.Join(dir, "missing"))
		assert.Error(t, err)
	})
}

func TestListCommand(t *testing.T) {
	dbPath := setupTestDB(t)

	stdout, err := run(t, dbPath, "list", writeStore(t, sampleStore()))
	require.NoError(t, err)
	assert.Equal(t, "a.jpg (1)\nb.png (2)\n", stdout)

	empty := writeStore(t, annotation.NewStore())
	stdout, err = run(t, dbPath, "list", empty)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No annotations found in "+empty)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = run(t, dbPath, "list", bad)
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	path := writeStore(t, sampleStore())

	stdout, err := run(t, dbPath, "show", path, "/some/where/b.png")
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 4\n40 30 10 5\n", stdout, "stored order and corners are preserved")

	stdout, err = run(t, dbPath, "show", path, "zzz.png")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No boxes for zzz.png")
}

func TestStatsCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	stdout, err := run(t, dbPath, "stats", writeStore(t, sampleStore()))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Images: 2")
	assert.Contains(t, stdout, "Boxes: 3")
}

func TestPruneCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("x"), 0644))

	t.Run("dry run", func(t *testing.T) {
		path := writeStore(t, sampleStore())
		stdout, err := run(t, dbPath, "prune", "--dryrun", path, dir)
		require.NoError(t, err)
		assert.Contains(t, stdout, "[DRY RUN] Would remove a.jpg")
		loaded, err := annotation.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleStore(), loaded)
	})

	t.Run("rewrite", func(t *testing.T) {
		path := writeStore(t, sampleStore())
		stdout, err := run(t, dbPath, "prune", path, dir)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed a.jpg")
		loaded, err := annotation.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, annotation.Store{"b.png": sampleStore()["b.png"]}, loaded)

		stdout, err = run(t, dbPath, "prune", path, dir)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Nothing to prune.")
	})
}

func TestRenderCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "b.png")
	writePNG(t, imgPath)
	out := filepath.Join(dir, "out.png")

	stdout, err := run(t, dbPath, "render", writeStore(t, sampleStore()), imgPath, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out+" with 2 boxes")

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, service.DisplayWidth, img.Bounds().Dx())
	assert.Equal(t, service.DisplayHeight, img.Bounds().Dy())
	r, g, b, _ := img.At(40, 30).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	assert.Equal(t, color.NRGBAModel.Convert(color.White), color.NRGBAModel.Convert(img.At(200, 200)))

	_, err = run(t, dbPath, "render", writeStore(t, sampleStore()), imgPath, filepath.Join(dir, "out.xyz"))
	assert.Error(t, err)
}

func TestInfoCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	imgPath := filepath.Join(t.TempDir(), "b.png")
	writePNG(t, imgPath)

	stdout, err := run(t, dbPath, "info", imgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dimensions: 32x24 px")
	assert.Contains(t, stdout, "File size: ")

	_, err = run(t, dbPath, "info", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSessionCommand(t *testing.T) {
	dbPath := setupTestDB(t)
	db, err := session.Open(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, db.SetLastFolder("/photos/b"))
	require.NoError(t, db.SetLastAnnotations("/photos/boxes.json"))
	require.NoError(t, db.SetFolderIndex("/photos/b", 4))
	require.NoError(t, db.SetFolderIndex("/photos/a", 0))
	require.NoError(t, db.Close())

	stdout, err := run(t, dbPath, "session")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Database: "+dbPath)
	assert.Contains(t, stdout, "Last folder: /photos/b")
	assert.Contains(t, stdout, "Last annotations: /photos/boxes.json")
	assert.Regexp(t, `/photos/a: image 1\n  /photos/b: image 5`, stdout)
}

func TestCommandsWhileSessionLocked(t *testing.T) {
	dbPath := setupTestDB(t)
	held, err := session.Open(dbPath, nil)
	require.NoError(t, err)
	defer held.Close()

	stdout, err := run(t, dbPath, "stats", writeStore(t, sampleStore()))
	require.NoError(t, err, "annotation commands do not need the session database")
	assert.Contains(t, stdout, "Boxes: 3")

	_, err = run(t, dbPath, "session")
	assert.ErrorContains(t, err, "failed to open session DB")
}
