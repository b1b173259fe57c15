package convert

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"portalview/internal/utils"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Cache converts .tex files to PNG once and serves the PNG afterwards.
// With an empty OutDir the PNG is written next to the source. Images
// larger than MaxSize on either side are scaled down on load; the cached
// PNG keeps the full resolution.
type Cache struct {
	OutDir  string
	MaxSize int
}

func (c Cache) pngPath(texPath string) string {
	name := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath)) + ".png"
	if c.OutDir != "" {
		return filepath.Join(c.OutDir, name)
	}
	return filepath.Join(filepath.Dir(texPath), name)
}

// Load returns the image at path. .tex files go through the PNG cache,
// anything else (PNG, JPEG, BMP, WebP) is decoded directly.
func (c Cache) Load(path string) (image.Image, error) {
	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return c.fit(img), nil
}

func (c Cache) load(path string) (image.Image, error) {
	if !strings.EqualFold(filepath.Ext(path), ".tex") {
		return decodeImageFile(path)
	}

	cached := c.pngPath(path)
	if _, err := os.Stat(cached); err == nil {
		img, err := decodeImageFile(cached)
		if err == nil {
			return img, nil
		}
		utils.Warn("Ignoring unreadable cached texture %s: %v", cached, err)
	}

	img, err := DecodeTexFile(path)
	if err != nil {
		return nil, err
	}
	if err := writePNG(cached, img); err != nil {
		utils.Warn("Failed to cache texture %s: %v", cached, err)
	}
	return img, nil
}

// fit scales img down to MaxSize keeping its aspect ratio.
func (c Cache) fit(img image.Image) image.Image {
	size := img.Bounds().Size()
	if c.MaxSize <= 0 || (size.X <= c.MaxSize && size.Y <= c.MaxSize) {
		return img
	}
	w, h := c.MaxSize, c.MaxSize
	if size.X > size.Y {
		h = max(1, size.Y*c.MaxSize/size.X)
	} else {
		w = max(1, size.X*c.MaxSize/size.Y)
	}
	utils.Debug("Scaling texture %dx%d down to %dx%d", size.X, size.Y, w, h)
	return transform.Resize(img, w, h, transform.Linear)
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// maxConcurrency bounds parallel conversions to keep memory in check.
const maxConcurrency = 10

// ConvertAll fills the cache for every .tex file under root and returns
// how many were converted. Failures are logged and skipped.
func (c Cache) ConvertAll(root string) (int, error) {
	utils.Info("Starting bulk texture conversion in %s...", root)
	var converted atomic.Int32
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".tex") {
			return nil
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := c.load(path); err != nil {
				utils.Error("Failed to convert %s: %v", path, err)
				return
			}
			converted.Add(1)
		}()
		return nil
	})
	wg.Wait()

	n := int(converted.Load())
	utils.Info("Bulk conversion finished. Processed %d textures.", n)
	return n, err
}
