package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()
	threshold := DefaultSizeThreshold

	tests := []struct {
		name string
		size int64
		want Category
	}{
		{"movie.mkv", 80 * mb, Movie},
		{"MOVIE.MKV", 80 * mb, Movie},
		{"Some.Movie.2001.Mp4", 80 * mb, Movie},
		{"notes.txt", 80 * mb, Unusual},
		{"track.srt", 80 * mb, Unusual},
		{".hidden.mkv", 80 * mb, Unusual},
		{"mkv", 80 * mb, Unusual},
		{"movie.mkv.part", 80 * mb, Unusual},
		{"track.srt", 1024, Subtitle},
		{"track.IDX", 1024, Subtitle},
		{"sample.mkv", 1024, PossiblyJunk},
		{".hidden.srt", 1024, PossiblyJunk},
		{"exactly.mkv", threshold, PossiblyJunk},
		{"just-over.mkv", threshold + 1, Movie},
	}

	for _, tt := range tests {
		got, err := c.Classify(tt.name, tt.size, threshold)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, "Classify(%q, %d)", tt.name, tt.size)
	}
}

func TestClassifyRejectsPaths(t *testing.T) {
	c := DefaultClassifier()
	for _, name := range []string{"dir/movie.mkv", "/abs/movie.mkv", "", ".", ".."} {
		_, err := c.Classify(name, 80*mb, DefaultSizeThreshold)
		assert.ErrorIs(t, err, ErrInvalidArgument, "name %q", name)
	}
}

func TestNewClassifierCustomExtensions(t *testing.T) {
	c, err := NewClassifier([]string{".webm", " mkv "}, []string{"ass"})
	require.NoError(t, err)

	assert.True(t, c.IsVideo("clip.WEBM"))
	assert.True(t, c.IsVideo("/some/dir/clip.mkv"))
	assert.False(t, c.IsVideo("clip.mp4"))
	assert.True(t, c.IsSubtitle("track.ass"))
	assert.False(t, c.IsSubtitle("track.srt"))
}

func TestNewClassifierRejectsEmptyLists(t *testing.T) {
	_, err := NewClassifier(nil, DefaultSubtitleExtensions)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewClassifier(DefaultVideoExtensions, []string{" ", ""})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPathPredicates(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"dir/":      0,
		"file.mkv":  2048,
		"dir/x.srt": 10,
	})
	fsys := OSFileSystem{}
	dir := filepath.Join(root, "dir")
	file := filepath.Join(root, "file.mkv")
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(dir, link))

	isDir, err := IsDirectory(fsys, dir)
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = IsDirectory(fsys, link)
	require.NoError(t, err)
	assert.False(t, isDir, "a symlink to a directory is not a directory")

	isLink, err := IsSymlink(fsys, link)
	require.NoError(t, err)
	assert.True(t, isLink)

	isFile, err := IsRegularFile(fsys, file)
	require.NoError(t, err)
	assert.True(t, isFile)

	isFile, err = IsRegularFile(fsys, dir)
	require.NoError(t, err)
	assert.False(t, isFile)

	size, err := FileSize(fsys, file)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), size)

	ok, err := IsReadableOrWritable(fsys, file)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := Exists(fsys, filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.False(t, found)

	_, err = FileSize(fsys, filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	for _, check := range []func(FileSystem, string) (bool, error){IsDirectory, IsRegularFile, IsSymlink, IsReadableOrWritable, Exists} {
		_, err := check(fsys, "relative/path")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestCategoryText(t *testing.T) {
	for c := Movie; c <= Folder; c++ {
		text, err := c.MarshalText()
		require.NoError(t, err)
		var parsed Category
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("Documentary")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, Folder.IsFile())
	assert.True(t, PossiblyJunk.IsFile())
}
