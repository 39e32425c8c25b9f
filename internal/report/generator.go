package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"grocerbot/internal/session"
	"grocerbot/internal/snapshot"
)

// Uploader stores a finished PDF remotely and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// MetadataWriter records generated files against a session snapshot.
type MetadataWriter interface {
	AppendGeneratedFile(ctx context.Context, sessionID string, f snapshot.GeneratedFile) error
}

type Generator struct {
	dir      string
	uploader Uploader
	meta     MetadataWriter
	logger   *log.Logger
	now      func() time.Time
}

// Result describes one generated summary.
type Result struct {
	Path         string
	DownloadName string
	URL          string
	Size         int
}

func NewGenerator(dir string, meta MetadataWriter, logger *log.Logger) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pdf dir: %w", err)
	}
	return &Generator{dir: dir, meta: meta, logger: logger, now: time.Now}, nil
}

// WithUploader mirrors every generated PDF to remote storage.
func (g *Generator) WithUploader(u Uploader) *Generator {
	g.uploader = u
	return g
}

// Generate renders the summary for s into the PDF directory. Upload and
// metadata failures are logged and do not fail the download.
func (g *Generator) Generate(ctx context.Context, s *session.Session) (*Result, error) {
	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	f, err := os.CreateTemp(g.dir, "grocery-*.pdf")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	now := g.now()
	res := &Result{
		Path:         f.Name(),
		DownloadName: "grocery-" + now.Format("20060102-150405") + ".pdf",
		Size:         buf.Len(),
	}

	if g.uploader != nil {
		key := "pdfs/" + s.ID + "/" + filepath.Base(res.Path)
		url, err := g.uploader.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "application/pdf")
		if err != nil {
			g.logger.Warn("pdf upload failed", "session", s.ID, "key", key, "err", err)
		} else {
			res.URL = url
		}
	}

	if g.meta != nil {
		err := g.meta.AppendGeneratedFile(ctx, s.ID, snapshot.GeneratedFile{
			Path:        filepath.Base(res.Path),
			GeneratedAt: now,
			URL:         res.URL,
		})
		switch {
		case errors.Is(err, snapshot.ErrNoSnapshot):
			g.logger.Debug("no snapshot to record pdf against", "session", s.ID)
		case err != nil:
			g.logger.Warn("could not record pdf in snapshot", "session", s.ID, "err", err)
		}
	}

	g.logger.Info("pdf generated", "session", s.ID, "file", filepath.Base(res.Path), "bytes", res.Size)
	return res, nil
}
