package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// multipart framing on top of the file itself
const multipartOverhead = 64 << 10

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// saveImage stores the multipart "file" field as <kind>_<id><ext> in the
// upload directory and returns its public path.
func (h *APIHandler) saveImage(c *gin.Context, kind, id string) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", fmt.Errorf("%w: file exceeds %d bytes", models.ErrInvalidInput, h.cfg.MaxUploadBytes)
		}
		return "", fmt.Errorf("%w: a file field named \"file\" is required", models.ErrInvalidInput)
	}
	if header.Size > h.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", models.ErrInvalidInput, h.cfg.MaxUploadBytes)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	mime := http.DetectContentType(sniff[:n])
	ext, ok := imageExtensions[mime]
	if !ok {
		return "", fmt.Errorf("%w: only image uploads are allowed, got %s", models.ErrInvalidInput, mime)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare upload dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s%s", kind, sanitizeID(id), ext)
	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	h.logger.Info("image uploaded", zap.String("kind", kind), zap.String("id", id), zap.String("file", name))
	return "/uploads/" + name, nil
}

// sanitizeID keeps ids from escaping the upload directory
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, id)
}
