package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/session"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleSession(t *testing.T) *session.Session {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultCategories)
	require.NoError(t, err)

	s := session.New("sess-1", t0)
	s.AppendTurn(session.RoleUser, "add 2 apples", t0)
	_, err = s.ApplyCart(cart.NewEngine(cat), cart.ActionAdd, "apple", 2)
	require.NoError(t, err)
	return s
}

func TestFileWriter_WriteAndRead(t *testing.T) {
	w, err := NewFileWriter(t.TempDir())
	require.NoError(t, err)
	w.now = func() time.Time { return t0 }

	require.NoError(t, w.Write(context.Background(), sampleSession(t)))

	doc, err := w.Read("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", doc.SessionID)
	assert.Equal(t, 160.0, doc.ShoppingCart.Subtotal)
	require.Len(t, doc.ChatHistory, 1)
	assert.True(t, doc.SavedAt.Equal(t0))
	assert.Empty(t, doc.GeneratedFiles)

	entries, err := os.ReadDir(w.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sess-1.json", entries[0].Name())
}

func TestFileWriter_GeneratedFilesSurviveRewrite(t *testing.T) {
	ctx := context.Background()
	w, err := NewFileWriter(t.TempDir())
	require.NoError(t, err)

	s := sampleSession(t)
	require.NoError(t, w.Write(ctx, s))
	require.NoError(t, w.AppendGeneratedFile(ctx, s.ID, GeneratedFile{Path: "tmp/a.pdf", GeneratedAt: t0}))

	s.AppendTurn(session.RoleAssistant, "done", t0)
	require.NoError(t, w.Write(ctx, s))

	doc, err := w.Read(s.ID)
	require.NoError(t, err)
	require.Len(t, doc.GeneratedFiles, 1)
	assert.Equal(t, "tmp/a.pdf", doc.GeneratedFiles[0].Path)
	assert.Len(t, doc.ChatHistory, 2)
}

func TestFileWriter_MissingAndInvalid(t *testing.T) {
	w, err := NewFileWriter(t.TempDir())
	require.NoError(t, err)

	_, err = w.Read("nobody")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	err = w.AppendGeneratedFile(context.Background(), "nobody", GeneratedFile{})
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = w.Read(filepath.Join("..", "etc"))
	assert.ErrorIs(t, err, session.ErrInvalidID)
}
