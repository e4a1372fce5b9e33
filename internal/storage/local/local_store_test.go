package local_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/domain"
	"mederror/internal/storage/local"
)

func TestStore_WriteCreatesParents(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := local.NewStore(fs)

	loc, err := store.Write(context.Background(), "output/o1/result.txt", []byte("###### 1\nok\n"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "output/o1/result.txt", loc)

	exists, err := afero.DirExists(fs, "output/o1")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Read(context.Background(), "file://output/o1/result.txt")
	require.NoError(t, err)
	assert.Equal(t, "###### 1\nok\n", string(data))
}

func TestStore_WriteOverwrites(t *testing.T) {
	store := local.NewStore(afero.NewMemMapFs())
	_, err := store.Write(context.Background(), "a.csv", []byte("first"), "text/csv")
	require.NoError(t, err)
	_, err = store.Write(context.Background(), "a.csv", []byte("second"), "text/csv")
	require.NoError(t, err)

	data, err := store.Read(context.Background(), "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_ReadMissing(t *testing.T) {
	store := local.NewStore(afero.NewMemMapFs())
	_, err := store.Read(context.Background(), "absent.csv")
	require.ErrorIs(t, err, domain.ErrMissingSource)
	assert.Contains(t, err.Error(), "absent.csv")
}
