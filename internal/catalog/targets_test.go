package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	calls []Mutation
}

func (r *recordingTarget) ApplyMutation(ctx context.Context, m Mutation) error {
	r.calls = append(r.calls, m)
	return nil
}

type failingTarget struct{}

func (failingTarget) ApplyMutation(ctx context.Context, m Mutation) error {
	return errors.New("target unavailable")
}

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	ctx := context.Background()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(ctx, db))
	return NewJournal(db)
}

func TestMutationsDispatchToTargets(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"a/movie.mkv": 80 * mb,
		"a/sub/x.srt": 10,
		"b/":          0,
	})
	target := &recordingTarget{}
	c := newTestCatalog(t, root, Options{Targets: []MutationTarget{target}})
	ctx := context.Background()

	require.NoError(t, c.MoveFile(ctx, filepath.Join(root, "a", "movie.mkv"), filepath.Join(root, "b", "movie.mkv")))
	require.NoError(t, c.MoveFolder(ctx, filepath.Join(root, "a", "sub"), filepath.Join(root, "b", "sub")))
	require.NoError(t, c.DeleteFolder(ctx, filepath.Join(root, "a")))

	require.Len(t, target.calls, 3)
	assert.Equal(t, Mutation{
		Op:          OpMove,
		Kind:        KindFile,
		Source:      filepath.Join(root, "a", "movie.mkv"),
		Destination: filepath.Join(root, "b", "movie.mkv"),
		Category:    Movie,
		At:          target.calls[0].At,
	}, target.calls[0])
	assert.False(t, target.calls[0].At.IsZero())
	assert.Equal(t, KindFolder, target.calls[1].Kind)
	assert.Equal(t, Folder, target.calls[1].Category)
	assert.Equal(t, OpDelete, target.calls[2].Op)
	assert.Empty(t, target.calls[2].Destination)
}

func TestFailedMutationIsNotDispatched(t *testing.T) {
	root := makeTree(t, map[string]int64{"a.mkv": 10, "b.mkv": 10})
	target := &recordingTarget{}
	c := newTestCatalog(t, root, Options{})
	c.RegisterTarget(target)
	c.RegisterTarget(nil)

	err := c.MoveFile(context.Background(), filepath.Join(root, "a.mkv"), filepath.Join(root, "b.mkv"))
	assert.ErrorIs(t, err, ErrCollision)
	assert.Empty(t, target.calls)
}

func TestFailingTargetDoesNotFailMutation(t *testing.T) {
	root := makeTree(t, map[string]int64{"a.mkv": 10})
	target := &recordingTarget{}
	c := newTestCatalog(t, root, Options{Targets: []MutationTarget{failingTarget{}, target}})

	require.NoError(t, c.DeleteFile(context.Background(), filepath.Join(root, "a.mkv")))
	assert.False(t, c.ContainsFile(filepath.Join(root, "a.mkv")))
	assert.Len(t, target.calls, 1)
}

func TestJournalRecordsMutations(t *testing.T) {
	ctx := context.Background()
	journal := openTestJournal(t)

	root := makeTree(t, map[string]int64{
		"a/x.srt": 10,
		"a/y.txt": 10,
		"b/":      0,
	})
	c := newTestCatalog(t, root, Options{Targets: []MutationTarget{journal}})

	require.NoError(t, c.CopyFile(ctx, filepath.Join(root, "a", "x.srt"), filepath.Join(root, "b", "x.srt")))
	require.NoError(t, c.DeleteFile(ctx, filepath.Join(root, "a", "y.txt")))
	require.NoError(t, c.CopyFolder(ctx, filepath.Join(root, "a"), filepath.Join(root, "b", "a")))

	stored, err := journal.StoredMutations(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 4)

	assert.Equal(t, OpCopy, stored[0].Op)
	assert.Equal(t, KindFile, stored[0].Kind)
	assert.Equal(t, Subtitle, stored[0].Category)
	assert.Equal(t, filepath.Join(root, "b", "x.srt"), stored[0].Destination)
	assert.NotEmpty(t, stored[0].AppliedAt)

	assert.Equal(t, OpDelete, stored[1].Op)
	assert.Equal(t, PossiblyJunk, stored[1].Category)
	assert.Empty(t, stored[1].Destination)

	assert.Equal(t, KindFolder, stored[2].Kind)
	assert.Equal(t, filepath.Join(root, "b", "a"), stored[2].Destination)
	assert.Equal(t, filepath.Join(root, "b", "a", "x.srt"), stored[3].Destination)

	for i := 1; i < len(stored); i++ {
		assert.Greater(t, stored[i].ID, stored[i-1].ID)
	}

	summary, err := journal.StoredSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []StoredOpSummary{
		{Op: OpCopy, Kind: KindFile, Count: 2},
		{Op: OpCopy, Kind: KindFolder, Count: 1},
		{Op: OpDelete, Kind: KindFile, Count: 1},
	}, summary)
}

func TestOpenDatabaseCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	db, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	journal := NewJournal(db)
	require.NoError(t, journal.ApplyMutation(ctx, Mutation{Op: OpDelete, Kind: KindFile, Source: "/x/y.mkv", Category: Movie}))

	stored, err := journal.StoredMutations(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "/x/y.mkv", stored[0].Source)
	assert.Equal(t, Movie, stored[0].Category)
}

func TestOpenDatabaseUsesWAL(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDatabaseInMemory(t *testing.T) {
	ctx := context.Background()
	cwd := t.TempDir()
	t.Chdir(cwd)

	db, err := OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	journal := NewJournal(db)
	for _, source := range []string{"/r/a.mkv", "/r/b.mkv"} {
		require.NoError(t, journal.ApplyMutation(ctx, Mutation{Op: OpDelete, Kind: KindFile, Source: source, Category: Movie}))
	}
	summary, err := journal.StoredSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []StoredOpSummary{{Op: OpDelete, Kind: KindFile, Count: 2}}, summary)

	entries, err := os.ReadDir(cwd)
	require.NoError(t, err)
	assert.Empty(t, entries, "an in-memory journal should not touch the filesystem")
}

func TestShellTargetReceivesJSON(t *testing.T) {
	assert.Nil(t, NewShellTarget("   "))

	out := filepath.Join(t.TempDir(), "mutation.json")
	target := NewShellTarget("cat > '" + out + "'")
	require.NotNil(t, target)

	m := Mutation{Op: OpMove, Kind: KindFolder, Source: "/r/a", Destination: "/r/b", Category: Folder}
	require.NoError(t, target.ApplyMutation(context.Background(), m))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "move", raw["op"])
	assert.Equal(t, "folder", raw["kind"])
	assert.Equal(t, "Folder", raw["category"])

	var decoded Mutation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.Destination, decoded.Destination)
	assert.Equal(t, Folder, decoded.Category)
}

func TestShellTargetReportsFailure(t *testing.T) {
	target := NewShellTarget("echo broken >&2; exit 3")
	err := target.ApplyMutation(context.Background(), Mutation{Op: OpDelete, Kind: KindFile, Source: "/r/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
