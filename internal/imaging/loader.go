package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"
)

// MaxUploadBytes bounds the decoded size of inline base64 images.
const MaxUploadBytes = 32 << 20

// cachedImage is a decoded image together with the format name reported by
// the decoder.
type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of decoded images keyed by file
// path.
//
// Corner processing is typically repeated on the same file with different
// parameters, so the decode is kept until the entry is evicted. ImageCache is
// safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates an empty cache ready for use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the decoded image for path, reading it from disk on first use.
//
// The cache key is the exact path string; relative and absolute spellings of
// the same file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("%w: failed to open image: %w", ErrInvalidRaster, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidRaster, err)
	}

	entry = cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()
	return entry, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache and returns how many were held.
func (c *ImageCache) Clear() int {
	c.mu.Lock()
	n := len(c.images)
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
	return n
}

// Evict removes a single path from the cache and reports whether it was
// cached.
func (c *ImageCache) Evict(path string) bool {
	c.mu.Lock()
	_, ok := c.images[path]
	delete(c.images, path)
	c.mu.Unlock()
	return ok
}

// DecodeBase64 decodes an inline image given as plain base64 or as a data
// URL ("data:image/png;base64,...").
//
// Returns an error wrapping ErrInvalidRaster if the payload is empty, too
// large, not valid base64, or not a PNG, JPEG, or GIF image.
func DecodeBase64(data string) (image.Image, string, error) {
	data = strings.TrimSpace(data)
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+1:]
	}
	if data == "" {
		return nil, "", fmt.Errorf("%w: empty image payload", ErrInvalidRaster)
	}
	if base64.StdEncoding.DecodedLen(len(data)) > MaxUploadBytes {
		return nil, "", fmt.Errorf("%w: image payload exceeds %d bytes", ErrInvalidRaster, MaxUploadBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64: %v", ErrInvalidRaster, err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %v", ErrInvalidRaster, err)
	}
	return img, format, nil
}

// ImageInfo describes a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that accepted the file: "png", "jpeg", or "gif".
	Format string `json:"format"`

	// Channels is the channel count the corner pipeline will see: 1 for
	// grayscale sources, 3 otherwise.
	Channels int `json:"channels"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports whether the source color model carries alpha. Alpha
	// is discarded by the pipeline.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through the cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	info := Describe(entry.img)
	info.Format = entry.format
	info.FileSizeBytes = stat.Size()
	return info, nil
}

// Describe reports dimensions, channel layout, and depth of a decoded image.
func Describe(img image.Image) *ImageInfo {
	bounds := img.Bounds()
	info := &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Channels:   3,
		ColorDepth: "8-bit",
	}
	switch img.(type) {
	case *image.Gray:
		info.Channels = 1
	case *image.Gray16:
		info.Channels = 1
		info.ColorDepth = "16-bit"
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	}
	return info
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &DimensionsResult{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
