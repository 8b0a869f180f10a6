package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/disintegration/imaging"
)

// fakeS3 records PutObject calls; every other S3API method panics if used
type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected upload context to carry a deadline")
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

// failingSink always returns its error
type failingSink struct{ err error }

func (s failingSink) Save(context.Context, string, image.Image) (string, error) {
	return "", s.err
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestFrameKey(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		scene    string
		frame    int
		expected string
	}{
		{"sgr-a", 0, "sgr-a/render_20240305_140709"},
		{"sgr-a", 12, "sgr-a/render_20240305_140709_0012"},
		{"file:closeup", 0, "closeup/render_20240305_140709"},
		{"scenes/bare-lens.scene", 0, "bare-lens/render_20240305_140709"},
		{"", 1, "default/render_20240305_140709_0001"},
	}

	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			if got := FrameKey(tt.scene, at, tt.frame); got != tt.expected {
				t.Errorf("FrameKey(%q, %d) = %q, want %q", tt.scene, tt.frame, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input       string
		expected    imaging.Format
		contentType string
		ext         string
	}{
		{"png", imaging.PNG, "image/png", "png"},
		{"jpg", imaging.JPEG, "image/jpeg", "jpg"},
		{"jpeg", imaging.JPEG, "image/jpeg", "jpg"},
		{"tiff", imaging.TIFF, "image/tiff", "tif"},
		{"bmp", imaging.BMP, "image/bmp", "bmp"},
		{"gif", imaging.GIF, "image/gif", "gif"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) error: %v", tt.input, err)
			}
			if f != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, f, tt.expected)
			}
			if ContentType(f) != tt.contentType {
				t.Errorf("ContentType = %q, want %q", ContentType(f), tt.contentType)
			}
			if Extension(f) != tt.ext {
				t.Errorf("Extension = %q, want %q", Extension(f), tt.ext)
			}
		})
	}

	if _, err := ParseFormat("exr"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestThumbnail(t *testing.T) {
	img := testImage(400, 200)

	thumb := Thumbnail(img, 100)
	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 50 {
		t.Errorf("Expected 100x50 thumbnail, got %v", thumb.Bounds())
	}

	if Thumbnail(img, 0) != image.Image(img) {
		t.Error("Expected maxEdge 0 to return the original image")
	}
	if Thumbnail(img, 800) != image.Image(img) {
		t.Error("Expected small images to be returned unchanged")
	}
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "png")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	img := testImage(16, 8)
	location, err := sink.Save(context.Background(), "sgr-a/render_test", img)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	expected := filepath.Join(dir, "sgr-a", "render_test.png")
	if location != expected {
		t.Errorf("Location = %q, want %q", location, expected)
	}

	file, err := os.Open(location)
	if err != nil {
		t.Fatalf("Failed to open saved file: %v", err)
	}
	defer file.Close()

	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Saved file is not a PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Decoded bounds %v, want %v", decoded.Bounds(), img.Bounds())
	}
	if r, g, b, _ := decoded.At(5, 3).RGBA(); r>>8 != 5 || g>>8 != 3 || b>>8 != 128 {
		t.Errorf("Unexpected pixel at (5,3): %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestFileSinkErrors(t *testing.T) {
	if _, err := NewFileSink(t.TempDir(), "webp"); err == nil {
		t.Error("Expected error for unsupported format")
	}

	sink, err := NewFileSink(t.TempDir(), "jpg")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sink.Save(ctx, "x/render", testImage(4, 4)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestS3Sink(t *testing.T) {
	client := &fakeS3{}
	sink, err := NewS3SinkWithClient(client, "frames", "renders", "png", nil)
	if err != nil {
		t.Fatalf("NewS3SinkWithClient failed: %v", err)
	}

	img := testImage(8, 8)
	location, err := sink.Save(context.Background(), "m87/render_test", img)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if location != "s3://frames/renders/m87/render_test.png" {
		t.Errorf("Unexpected location %q", location)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("Expected one upload, got %d", len(client.inputs))
	}

	input := client.inputs[0]
	if aws.StringValue(input.Bucket) != "frames" || aws.StringValue(input.Key) != "renders/m87/render_test.png" {
		t.Errorf("Unexpected bucket/key %s/%s", aws.StringValue(input.Bucket), aws.StringValue(input.Key))
	}
	if aws.StringValue(input.ContentType) != "image/png" {
		t.Errorf("Unexpected content type %q", aws.StringValue(input.ContentType))
	}
	if aws.Int64Value(input.ContentLength) != int64(len(client.bodies[0])) {
		t.Errorf("ContentLength %d does not match body length %d", aws.Int64Value(input.ContentLength), len(client.bodies[0]))
	}
	if _, err := png.Decode(bytes.NewReader(client.bodies[0])); err != nil {
		t.Errorf("Uploaded body is not a PNG: %v", err)
	}
}

func TestS3SinkUploadError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	sink, err := NewS3SinkWithClient(client, "frames", "", "png", nil)
	if err != nil {
		t.Fatalf("NewS3SinkWithClient failed: %v", err)
	}

	_, err = sink.Save(context.Background(), "a/b", testImage(2, 2))
	if err == nil || !strings.Contains(err.Error(), "failed to upload a/b.png") {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}

func TestMultiSink(t *testing.T) {
	client := &fakeS3{}
	s3Sink, err := NewS3SinkWithClient(client, "frames", "", "png", nil)
	if err != nil {
		t.Fatalf("NewS3SinkWithClient failed: %v", err)
	}
	fileSink, err := NewFileSink(t.TempDir(), "png")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	boom := errors.New("boom")
	multi := MultiSink{fileSink, failingSink{err: boom}, s3Sink}

	location, err := multi.Save(context.Background(), "scene/render", testImage(4, 4))
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined error to contain boom, got %v", err)
	}
	if !strings.Contains(location, "render.png") || !strings.Contains(location, "s3://frames/scene/render.png") {
		t.Errorf("Expected both successful locations, got %q", location)
	}
	if len(client.inputs) != 1 {
		t.Errorf("Expected the sink after the failure to still run, got %d uploads", len(client.inputs))
	}
}
