// Package output persists rendered frames to local files and object storage.
package output

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Sink stores an encoded frame under a key such as "sgr-a/render_20240101_120000"
// and returns where it ended up. The key carries no extension.
type Sink interface {
	Save(ctx context.Context, key string, img image.Image) (string, error)
}

// FrameKey builds the storage key for a frame. Frame numbers above zero are
// appended so animation frames rendered in the same second do not collide.
func FrameKey(sceneName string, at time.Time, frameNumber int) string {
	name := strings.TrimPrefix(sceneName, "file:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "default"
	}

	key := fmt.Sprintf("%s/render_%s", name, at.Format("20060102_150405"))
	if frameNumber > 0 {
		key = fmt.Sprintf("%s_%04d", key, frameNumber)
	}
	return key
}

// ThumbnailKey returns the key a thumbnail of key is stored under
func ThumbnailKey(key string) string {
	return key + "_thumb"
}

// Thumbnail scales img down so neither edge exceeds maxEdge, keeping the
// aspect ratio. Images already small enough are returned unchanged.
func Thumbnail(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	if maxEdge <= 0 || (b.Dx() <= maxEdge && b.Dy() <= maxEdge) {
		return img
	}
	return resize.Thumbnail(uint(maxEdge), uint(maxEdge), img, resize.Bilinear)
}

// ParseFormat validates an output format name such as "png" or "jpg"
func ParseFormat(format string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return 0, fmt.Errorf("unsupported output format %q: %w", format, err)
	}
	return f, nil
}

// ContentType returns the MIME type for an image format
func ContentType(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

// Extension returns the file extension for an image format, without the dot
func Extension(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "jpg"
	case imaging.GIF:
		return "gif"
	case imaging.TIFF:
		return "tif"
	case imaging.BMP:
		return "bmp"
	default:
		return "png"
	}
}

// FileSink writes frames below a local directory
type FileSink struct {
	dir    string
	format imaging.Format
}

// NewFileSink creates a sink writing format files below dir
func NewFileSink(dir, format string) (*FileSink, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &FileSink{dir: dir, format: f}, nil
}

// Save writes img to <dir>/<key>.<ext>, creating directories as needed
func (s *FileSink) Save(ctx context.Context, key string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := filepath.Join(s.dir, filepath.FromSlash(key)+"."+Extension(s.format))
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, filename); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return filename, nil
}

// MultiSink saves every frame to each of its sinks in order
type MultiSink []Sink

// Save stores img in every sink. All sinks are attempted; the returned
// location lists each successful one.
func (m MultiSink) Save(ctx context.Context, key string, img image.Image) (string, error) {
	var locations []string
	var errs []error
	for _, sink := range m {
		loc, err := sink.Save(ctx, key, img)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), errors.Join(errs...)
}
