package uploads

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/blake2b"
)

// URLPrefix is where stored files are served back.
const URLPrefix = "/uploads/"

var (
	ErrTooLarge  = errors.New("file too large")
	ErrEmptyName = errors.New("file name is required")
)

type Stored struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

type Storage struct {
	dir      string
	maxBytes int64
}

func NewStorage(dir string, maxBytes int64) *Storage {
	return &Storage{dir: dir, maxBytes: maxBytes}
}

func (s *Storage) Dir() string { return s.dir }

// Save writes r under a unique <uuid>_<name> file name. A partially written
// file is removed on any failure.
func (s *Storage) Save(ctx context.Context, originalName string, r io.Reader) (*Stored, error) {
	name := sanitizeName(originalName)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("upload id: %w", err)
	}
	filename := id.String() + "_" + name
	path := filepath.Join(s.dir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}
	hasher, err := blake2b.New256(nil)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(io.MultiWriter(f, hasher), &ctxReader{ctx: ctx, r: src})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write upload: %w", err)
	}
	return &Stored{
		Filename: filename,
		URL:      URLPrefix + filename,
		Size:     n,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
