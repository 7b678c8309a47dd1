package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveOpenRemove(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	written, err := store.Save(ctx, "paciente_1/exame.pdf", strings.NewReader("conteudo"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("conteudo")), written)

	reader, err := store.Open(ctx, "paciente_1/exame.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "conteudo", string(data))

	require.NoError(t, store.Remove(ctx, "paciente_1/exame.pdf"))

	_, err = store.Open(ctx, "paciente_1/exame.pdf")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDiskStore_RemoveMissing(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	err := store.Remove(context.Background(), "paciente_9/sumiu.pdf")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}
