package annotator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fyannotate/internal/annotation"
	"fyannotate/internal/scan"
	"fyannotate/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolder(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	return dir
}

func newTestAnnotator() *Annotator {
	return New(service.NewService(nil, scan.FileScannerImpl{}, nil))
}

func openFolder(t *testing.T, a *Annotator, dir string) Frame {
	t.Helper()
	f, ok, err := a.OpenFolder(dir)
	require.NoError(t, err)
	require.True(t, ok)
	return f
}

func TestOpenFolderSortsAndFilters(t *testing.T) {
	dir := newFolder(t, "c.png", "a.jpg", "b.png", "readme.txt", "x.jpeg", "Y.PNG")
	a := newTestAnnotator()

	f := openFolder(t, a, dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.png"),
	}, a.Images())
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), f.Path)
	assert.Equal(t, "a.jpg", f.Filename)
	assert.Equal(t, dir, a.Dir())
}

func TestOpenFolderResetsIndex(t *testing.T) {
	first := newFolder(t, "1.png", "2.png", "3.png")
	second := newFolder(t, "z.png", "y.png")
	a := newTestAnnotator()

	openFolder(t, a, first)
	a.Next()
	a.Next()
	require.Equal(t, 2, a.Index())

	f := openFolder(t, a, second)
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, "y.png", f.Filename)
	assert.Equal(t, 2, a.Len())
}

func TestOpenFolderEmpty(t *testing.T) {
	a := newTestAnnotator()
	_, ok, err := a.OpenFolder(newFolder(t, "notes.txt"))
	require.NoError(t, err)
	assert.False(t, ok, "empty image set displays nothing")
	assert.Zero(t, a.Len())

	_, ok = a.Frame()
	assert.False(t, ok)
	_, ok = a.Next()
	assert.False(t, ok)
	_, ok = a.Prev()
	assert.False(t, ok)
}

func TestOpenFolderErrorKeepsState(t *testing.T) {
	dir := newFolder(t, "a.png")
	a := newTestAnnotator()
	openFolder(t, a, dir)

	_, _, err := a.OpenFolder(filepath.Join(dir, "missing"))
	assert.Error(t, err)
	assert.Equal(t, dir, a.Dir())
	assert.Equal(t, 1, a.Len())
}

func TestNavigationClamps(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png", "b.png", "c.png"))

	_, ok := a.Prev()
	assert.False(t, ok, "prev at index 0 is a no-op")
	assert.Equal(t, 0, a.Index())

	seen := []int{a.Index()}
	for {
		f, ok := a.Next()
		if !ok {
			break
		}
		seen = append(seen, f.Index)
	}
	assert.Equal(t, []int{0, 1, 2}, seen)

	_, ok = a.Next()
	assert.False(t, ok, "next at the last index is a no-op")
	assert.Equal(t, 2, a.Index())

	f, ok := a.Prev()
	require.True(t, ok)
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, "b.png", f.Filename)
}

func TestSeekClamps(t *testing.T) {
	a := newTestAnnotator()
	_, ok := a.Seek(3)
	assert.False(t, ok)

	openFolder(t, a, newFolder(t, "a.png", "b.png", "c.png"))
	f, ok := a.Seek(1)
	require.True(t, ok)
	assert.Equal(t, 1, f.Index)

	f, _ = a.Seek(10)
	assert.Equal(t, 2, f.Index)
	f, _ = a.Seek(-4)
	assert.Equal(t, 0, f.Index)
}

func TestDrawRectangle(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png", "b.png"))
	a.Next()

	a.Press(Point{10, 10})
	assert.True(t, a.Drawing())

	transient, ok := a.Drag(Point{50, 40})
	require.True(t, ok)
	assert.Equal(t, annotation.NewRect(10, 10, 50, 40), transient)
	assert.Empty(t, a.Store(), "drag motion records nothing")

	r, ok := a.Release(Point{100, 80})
	require.True(t, ok)
	assert.Equal(t, annotation.NewRect(10, 10, 100, 80), r)
	assert.False(t, a.Drawing())

	store := a.Store()
	assert.Equal(t, []annotation.Rect{{X0: 10, Y0: 10, X1: 100, Y1: 80}}, store["b.png"])
	assert.NotContains(t, store, "a.png", "other images are unaffected")

	f, _ := a.Frame()
	assert.Equal(t, []annotation.Rect{{X0: 10, Y0: 10, X1: 100, Y1: 80}}, f.Rects)
}

func TestRectanglesAppendInOrderUnnormalized(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png"))

	a.Press(Point{10, 10})
	a.Release(Point{100, 80})
	a.Press(Point{300, 200})
	a.Release(Point{20, 5})

	assert.Equal(t, []annotation.Rect{{X0: 10, Y0: 10, X1: 100, Y1: 80}, {X0: 300, Y0: 200, X1: 20, Y1: 5}}, a.Store()["a.png"])
}

func TestGuardsWithoutPress(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png"))

	_, ok := a.Drag(Point{5, 5})
	assert.False(t, ok, "drag without press renders nothing")

	_, ok = a.Release(Point{5, 5})
	assert.False(t, ok, "release without press records nothing")
	assert.Empty(t, a.Store())

	a.Press(Point{1, 1})
	a.Release(Point{2, 2})
	_, ok = a.Release(Point{3, 3})
	assert.False(t, ok, "second release is ignored")
	assert.Len(t, a.Store()["a.png"], 1)
}

func TestReleaseWithoutImages(t *testing.T) {
	a := newTestAnnotator()
	a.Press(Point{1, 1})
	_, ok := a.Release(Point{9, 9})
	assert.False(t, ok)
	assert.False(t, a.Drawing())
	assert.Empty(t, a.Store())
}

func TestStoreIsACopy(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png"))
	a.Press(Point{1, 1})
	a.Release(Point{2, 2})

	s := a.Store()
	s.Add("a.png", annotation.NewRect(0, 0, 0, 0))
	assert.Len(t, a.Store()["a.png"], 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := newFolder(t, "a.png", "b.png")
	a := newTestAnnotator()
	openFolder(t, a, dir)
	a.Press(Point{10, 10})
	a.Release(Point{100, 80})
	a.Next()
	a.Press(Point{1, 2})
	a.Release(Point{3, 4})
	a.Press(Point{5, 6})
	a.Release(Point{7, 8})
	before := a.Store()

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, a.SaveAnnotations(path))

	b := newTestAnnotator()
	openFolder(t, b, dir)
	f, ok, err := b.LoadAnnotations(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, b.Store())
	assert.Equal(t, []annotation.Rect{{X0: 10, Y0: 10, X1: 100, Y1: 80}}, f.Rects, "current frame shows loaded boxes")
}

func TestLoadReplacesNotMerges(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "b.png"))
	a.Press(Point{5, 5})
	a.Release(Point{6, 6})

	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a.png": [[0,0,1,1]]}`), 0644))

	f, ok, err := a.LoadAnnotations(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, annotation.Store{"a.png": {{X0: 0, Y0: 0, X1: 1, Y1: 1}}}, a.Store())
	assert.Empty(t, f.Rects, "b.png has no boxes after the load")
}

func TestLoadWithoutImages(t *testing.T) {
	a := newTestAnnotator()
	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stale.png": [[0,0,1,1]]}`), 0644))

	_, ok, err := a.LoadAnnotations(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, a.Store(), "stale.png")
}

func TestLoadErrorKeepsStore(t *testing.T) {
	a := newTestAnnotator()
	openFolder(t, a, newFolder(t, "a.png"))
	a.Press(Point{1, 1})
	a.Release(Point{2, 2})

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a.png": [[1,2`), 0644))
	_, _, err := a.LoadAnnotations(bad)
	assert.Error(t, err)
	assert.Len(t, a.Store()["a.png"], 1)
}

type failingBackend struct{ err error }

func (f failingBackend) ListImages(string) (scan.FileItems, error) { return nil, f.err }
func (f failingBackend) SaveAnnotations(string, annotation.Store) error {
	return f.err
}
func (f failingBackend) LoadAnnotations(string) (annotation.Store, error) { return nil, f.err }

func TestBackendErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	a := New(failingBackend{err: boom})

	_, _, err := a.OpenFolder("/x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, a.SaveAnnotations("/x.json"), boom)
	_, _, err = a.LoadAnnotations("/x.json")
	assert.ErrorIs(t, err, boom)
}
