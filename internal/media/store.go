// Package media: вложения сообщений на диске. Файлы хранятся сжатыми (.gz) под
// случайными именами; в сообщении остаётся только URL и тип вложения.
package media

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
)

const URLPrefix = "/api/media/"

var (
	ErrBlockedType = errors.New("file type not allowed")
	ErrBadContent  = errors.New("file content does not match type")
	ErrNotFound    = errors.New("media not found")
)

// Исполняемые файлы и скрипты не принимаются.
var blockedExt = map[string]bool{
	".exe": true, ".sh": true, ".js": true, ".bat": true, ".cmd": true,
	".php": true, ".py": true, ".rb": true,
}

var kindByExt = map[string]model.MediaType{
	".jpg": model.MediaTypeImage, ".jpeg": model.MediaTypeImage, ".png": model.MediaTypeImage,
	".gif": model.MediaTypeImage, ".webp": model.MediaTypeImage, ".heic": model.MediaTypeImage,
	".mp4": model.MediaTypeVideo, ".mov": model.MediaTypeVideo, ".webm": model.MediaTypeVideo,
	".ogg": model.MediaTypeAudio, ".oga": model.MediaTypeAudio, ".opus": model.MediaTypeAudio,
	".m4a": model.MediaTypeAudio, ".mp3": model.MediaTypeAudio, ".aac": model.MediaTypeAudio,
}

var mimeByExt = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png", ".gif": "image/gif",
	".webp": "image/webp", ".heic": "image/heic",
	".mp4": "video/mp4", ".mov": "video/quicktime", ".webm": "video/webm",
	".ogg": "audio/ogg", ".oga": "audio/ogg", ".opus": "audio/opus", ".m4a": "audio/mp4",
	".mp3": "audio/mpeg", ".aac": "audio/aac",
	".pdf": "application/pdf", ".txt": "text/plain; charset=utf-8",
}

// Upload: результат сохранения; URL и MediaType идут в SendMessageRequest.
type Upload struct {
	URL       string          `json:"url"`
	Name      string          `json:"name"`
	MediaType model.MediaType `json:"mediaType"`
	Size      int64           `json:"size"`
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save сжимает содержимое в <dir>/<uuid><ext>.gz. Для картинок и pdf проверяется сигнатура.
func (s *Store) Save(ctx context.Context, filename string, src io.Reader) (*Upload, error) {
	defer logger.DeferLogDuration("media.Save", time.Now())()
	ext := strings.ToLower(filepath.Ext(strings.ReplaceAll(filename, "+", " ")))
	if blockedExt[ext] {
		return nil, ErrBlockedType
	}
	head := make([]byte, 512)
	n, err := io.ReadAtLeast(src, head, len(head))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("media read: %w", err)
	}
	head = head[:n]
	if !matchMagic(ext, head) {
		return nil, ErrBadContent
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name+".gz")
	size, err := writeGzip(ctx, path, io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	kind, ok := kindByExt[ext]
	if !ok {
		kind = model.MediaTypeFile
	}
	return &Upload{URL: URLPrefix + name, Name: name, MediaType: kind, Size: size}, nil
}

func writeGzip(ctx context.Context, path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("media create: %w", err)
	}
	gz := gzip.NewWriter(dst)
	size, copyErr := copyWithContext(ctx, gz, src)
	gzErr := gz.Close()
	closeErr := dst.Close()
	if err := errors.Join(copyErr, gzErr, closeErr); err != nil {
		return 0, fmt.Errorf("media write: %w", err)
	}
	return size, nil
}

// Open возвращает распакованное содержимое и Content-Type по расширению.
func (s *Store) Open(name string) (io.ReadCloser, string, error) {
	name = filepath.Base(name)
	f, err := os.Open(filepath.Join(s.dir, name+".gz"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("media gzip: %w", err)
	}
	ct := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &gzipFile{Reader: gz, f: f}, ct, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

func matchMagic(ext string, head []byte) bool {
	switch ext {
	case ".jpg", ".jpeg":
		return len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF
	case ".png":
		return len(head) >= 8 && bytes.Equal(head[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	case ".gif":
		return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
	case ".webp":
		return len(head) >= 12 && bytes.Equal(head[8:12], []byte("WEBP"))
	case ".pdf":
		return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
	}
	return true
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("upload cancelled: %w", err)
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return total, err
			}
			total += int64(n)
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}
