package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/session"
	"grocerbot/internal/snapshot"
)

var t0 = time.Date(2024, 5, 1, 10, 30, 15, 0, time.UTC)

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func sampleSession(t *testing.T) *session.Session {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultCategories)
	require.NoError(t, err)

	s := session.New("sess-1", t0)
	_, err = s.ApplyCart(cart.NewEngine(cat), cart.ActionAdd, "apple", 2)
	require.NoError(t, err)
	s.AppendTurn(session.RoleUser, "add 2 apples ₹", t0)
	s.AppendTurn(session.RoleAssistant, "Added 2kg of apple to your shopping cart.", t0)
	return s
}

func TestRender_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleSession(t)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestSafeText(t *testing.T) {
	assert.Equal(t, "Rs 80 ?", safeText("Rs 80 ₹"))
	assert.Equal(t, "caf?\tok\n", safeText("café\tok\n"))
	assert.Equal(t, "", safeText(""))
}

func TestGenerate_WritesUploadsAndRecords(t *testing.T) {
	ctx := context.Background()
	snaps, err := snapshot.NewFileWriter(t.TempDir())
	require.NoError(t, err)

	s := sampleSession(t)
	require.NoError(t, snaps.Write(ctx, s))

	up := &fakeUploader{}
	gen, err := NewGenerator(filepath.Join(t.TempDir(), "pdfs"), snaps, log.New(io.Discard))
	require.NoError(t, err)
	gen.WithUploader(up)
	gen.now = func() time.Time { return t0 }

	res, err := gen.Generate(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, "grocery-20240501-103015.pdf", res.DownloadName)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	require.Len(t, up.keys, 1)
	assert.Equal(t, "pdfs/sess-1/"+filepath.Base(res.Path), up.keys[0])
	assert.Equal(t, "https://cdn.example.com/"+up.keys[0], res.URL)

	doc, err := snaps.Read("sess-1")
	require.NoError(t, err)
	require.Len(t, doc.GeneratedFiles, 1)
	assert.Equal(t, filepath.Base(res.Path), doc.GeneratedFiles[0].Path)
	assert.Equal(t, res.URL, doc.GeneratedFiles[0].URL)
}

func TestGenerate_UploadFailureAndMissingSnapshotAreNotFatal(t *testing.T) {
	snaps, err := snapshot.NewFileWriter(t.TempDir())
	require.NoError(t, err)

	gen, err := NewGenerator(t.TempDir(), snaps, log.New(io.Discard))
	require.NoError(t, err)
	gen.WithUploader(&fakeUploader{err: errors.New("network down")})

	res, err := gen.Generate(context.Background(), sampleSession(t))
	require.NoError(t, err)
	assert.Empty(t, res.URL)
	assert.FileExists(t, res.Path)
}

func TestDownloadHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gen, err := NewGenerator(t.TempDir(), nil, log.New(io.Discard))
	require.NoError(t, err)
	h := NewHandler(gen)

	s := sampleSession(t)
	r := gin.New()
	r.Use(func(c *gin.Context) { session.Attach(c, s) })
	r.GET("/download-pdf", h.Download)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download-pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	cd := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(cd, "attachment;"), cd)
	assert.Contains(t, cd, "grocery-")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}
