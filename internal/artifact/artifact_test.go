package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func TestFilenameRoundTrip(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{"earth", 3600, 8766}, "earth__3600__8766.simstate"},
		{Key{"kepler", 0.001, 10}, "kepler__0.001__10.simstate"},
		{Key{"odd", 0.1 + 0.2, 3}, "odd__0.30000000000000004__3.simstate"},
		{Key{"irregular", -1, 5}, "irregular__-1__5.simstate"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Filename(".simstate"))

			got, err := ParseFilename(filepath.Join("some", "dir", tt.want), ".simstate")
			require.NoError(t, err)
			assert.Equal(t, tt.key, got)
		})
	}
}

func TestParseFilenameRejects(t *testing.T) {
	for _, name := range []string{
		"earth__3600__8766.siminteg",
		"earth__3600.simstate",
		"a__b__1__2.simstate",
		"earth__x__1.simstate",
		"earth__1__1.5.simstate",
		"__1__1.simstate",
	} {
		_, err := ParseFilename(name, ".simstate")
		assert.True(t, errors.Is(err, dynamo.ErrFormat), name)
	}
}

func TestKeyValidate(t *testing.T) {
	assert.NoError(t, Key{"ok", 1, 0}.Validate())
	assert.Error(t, Key{"a__b", 1, 0}.Validate())
	assert.NoError(t, Key{"a_b", 1, 0}.Validate())
	for _, name := range []string{"run_", "_run", "_"} {
		err := Key{name, 3600, 10}.Validate()
		assert.True(t, errors.Is(err, dynamo.ErrConfiguration), "%q: %v", name, err)
	}
	assert.Error(t, Key{"", 1, 0}.Validate())
	assert.Error(t, Key{"ok", 0, 0}.Validate())
	assert.Error(t, Key{"ok", 1, -1}.Validate())
	assert.True(t, Key{"ok", 2, 4}.Matches(2, 5))
	assert.False(t, Key{"ok", 2, 4}.Matches(2, 4))
}

func TestPendingCommit(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "run__1__1.bin")

	p, err := Create(dst)
	require.NoError(t, err)
	_, err = p.Write([]byte("payload"))
	require.NoError(t, err)

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "destination visible before commit")

	require.NoError(t, p.Commit())
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, _ := os.ReadDir(filepath.Dir(dst))
	assert.Len(t, entries, 1, "temporary file left behind")

	_, err = Create(dst)
	assert.True(t, errors.Is(err, dynamo.ErrExists))
}

func TestPendingAbort(t *testing.T) {
	dir := t.TempDir()
	p, err := Create(filepath.Join(dir, "run__1__1.bin"))
	require.NoError(t, err)
	require.NoError(t, p.Abort())

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestCommitLosesRace(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "run__1__1.bin")
	p, err := Create(dst)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dst, []byte("other"), 0644))
	assert.True(t, errors.Is(p.Commit(), dynamo.ErrExists))

	data, _ := os.ReadFile(dst)
	assert.Equal(t, "other", string(data))
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a__1__2.simstate", "b__0.5__4.simstate", "junk.simstate", "c__1__1.siminteg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	keys, err := Glob(dir, ".simstate")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Key{{"a", 1, 2}, {"b", 0.5, 4}}, keys)
}
