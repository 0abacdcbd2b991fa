package filekv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/daylist/internal/kv/filekv"
)

func Test_Get_Missing_Key_Returns_Not_Ok(t *testing.T) {
	t.Parallel()

	s, err := filekv.New(filepath.Join(t.TempDir(), "not-created-yet"))
	require.NoError(t, err)

	v, ok, err := s.Get(context.Background(), "@grocery_list_2024-03-01")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func Test_Set_Creates_Dir_And_Replaces_Value(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := filekv.New(dir)
	require.NoError(t, err)

	key := "@grocery_list_2024-03-01"
	require.NoError(t, s.Set(ctx, key, []byte(`[{"id":"1","name":"Milk","done":false}]`)))
	require.NoError(t, s.Set(ctx, key, []byte(`[]`)))

	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(v))

	info, err := os.Stat(filepath.Join(dir, key+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func Test_Keys_Cannot_Escape_Dir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "data")
	s, err := filekv.New(dir)
	require.NoError(t, err)

	for _, key := range []string{"../evil", "a/b", ".."} {
		require.NoError(t, s.Set(ctx, key, []byte("x")), key)

		v, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, "x", string(v))
	}

	top, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "data", top[0].Name())
}

func Test_Empty_Key_And_Dir_Are_Rejected(t *testing.T) {
	t.Parallel()

	_, err := filekv.New(" ")
	require.Error(t, err)

	s, err := filekv.New(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Set(context.Background(), "", []byte("x")))
}

func Test_Get_Surfaces_Read_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := filekv.New(dir)
	require.NoError(t, err)

	// a directory where the value file should be cannot be read as a file
	require.NoError(t, os.Mkdir(filepath.Join(dir, "k.json"), 0o755))

	_, _, err = s.Get(context.Background(), "k")
	require.Error(t, err)
}
