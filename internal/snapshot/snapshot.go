package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"grocerbot/internal/cart"
	"grocerbot/internal/session"
)

var ErrNoSnapshot = errors.New("snapshot not found")

type GeneratedFile struct {
	Path        string    `json:"generated_pdf"`
	GeneratedAt time.Time `json:"generated_at"`
	URL         string    `json:"url,omitempty"`
}

// Document is the on-disk shape of one session snapshot.
type Document struct {
	SessionID      string              `json:"session_id"`
	ShoppingCart   *cart.Cart          `json:"shopping_cart"`
	ChatHistory    []session.ChatTurn  `json:"chat_history"`
	UserContext    session.UserContext `json:"user_context"`
	SavedAt        time.Time           `json:"saved_at"`
	GeneratedFiles []GeneratedFile     `json:"generated_files,omitempty"`
}

// FileWriter keeps one JSON document per session under dir.
type FileWriter struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileWriter{dir: dir, now: time.Now}, nil
}

func (w *FileWriter) Dir() string {
	return w.dir
}

// Write replaces the snapshot for s. Generated file entries from the
// previous snapshot are carried over.
func (w *FileWriter) Write(ctx context.Context, s *session.Session) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.read(s.ID)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return err
	}

	doc := Document{
		SessionID:    s.ID,
		ShoppingCart: s.Cart,
		ChatHistory:  s.History,
		UserContext:  s.UserContext,
		SavedAt:      w.now(),
	}
	if prev != nil {
		doc.GeneratedFiles = prev.GeneratedFiles
	}
	return w.write(&doc)
}

// AppendGeneratedFile records an exported file against an existing snapshot.
func (w *FileWriter) AppendGeneratedFile(ctx context.Context, sessionID string, f GeneratedFile) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, err := w.read(sessionID)
	if err != nil {
		return err
	}
	doc.GeneratedFiles = append(doc.GeneratedFiles, f)
	return w.write(doc)
}

func (w *FileWriter) Read(sessionID string) (*Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.read(sessionID)
}

func (w *FileWriter) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID != filepath.Base(sessionID) {
		return "", fmt.Errorf("%w: %q", session.ErrInvalidID, sessionID)
	}
	return filepath.Join(w.dir, sessionID+".json"), nil
}

func (w *FileWriter) read(sessionID string) (*Document, error) {
	p, err := w.path(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return &doc, nil
}

func (w *FileWriter) write(doc *Document) error {
	p, err := w.path(doc.SessionID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.dir, doc.SessionID+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
