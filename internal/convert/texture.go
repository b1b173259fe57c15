// Package convert turns packed asset formats into something the renderer
// can upload: .tex textures become RGBA images (cached as PNG next to
// the source or in an output directory) and .pkg archives are unpacked
// into a scene directory.
package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"portalview/internal/utils"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"
)

const texMagic = "TEXV0005"

// Texture formats stored in the header.
const (
	formatDXT5 = 4
	formatDXT3 = 6
	formatDXT1 = 7
	formatRG88 = 8
	formatR8   = 9
)

var ErrInvalidTexture = errors.New("invalid texture")

// texReader reads little-endian fields and remembers the first error.
type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) uint32() uint32 {
	if t.err != nil {
		return 0
	}
	var v uint32
	t.err = binary.Read(t.r, binary.LittleEndian, &v)
	return v
}

// magic reads an 8 byte tag followed by its NUL terminator.
func (t *texReader) magic() string {
	if t.err != nil {
		return ""
	}
	b := make([]byte, 9)
	if _, t.err = io.ReadFull(t.r, b); t.err != nil {
		return ""
	}
	return string(bytes.TrimRight(b, "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

type texHeader struct {
	format        uint32
	width, height uint32
	container     string
	images        uint32
}

type mipmap struct {
	width, height uint32
	data          []byte
}

// DecodeTex decodes the first mipmap of the first image in a .tex
// stream, cropped to the image size recorded in the header.
func DecodeTex(r io.Reader) (image.Image, error) {
	tr := &texReader{r: r}
	h, err := readTexHeader(tr)
	if err != nil {
		return nil, err
	}
	if h.images == 0 {
		return nil, fmt.Errorf("%w: no image found", ErrInvalidTexture)
	}

	mipmaps := tr.uint32()
	if tr.err == nil && mipmaps == 0 {
		return nil, fmt.Errorf("%w: image has no mipmaps", ErrInvalidTexture)
	}
	m, err := readMipmap(tr, h.container)
	if err != nil {
		return nil, err
	}
	utils.Debug("    Format: %d, Mipmap: %dx%d, Target Size: %dx%d", h.format, m.width, m.height, h.width, h.height)

	pix, err := decodePixels(h.format, m)
	if err != nil {
		return nil, err
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: int(m.width * 4),
		Rect:   image.Rect(0, 0, int(m.width), int(m.height)),
	}
	crop := image.Rect(0, 0, int(h.width), int(h.height)).Intersect(img.Rect)
	if crop.Empty() {
		return img, nil
	}
	return img.SubImage(crop), nil
}

// DecodeTexFile is DecodeTex on a file.
func DecodeTexFile(path string) (image.Image, error) {
	utils.Debug("Decoding texture: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := DecodeTex(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func readTexHeader(tr *texReader) (texHeader, error) {
	var h texHeader
	if m := tr.magic(); tr.err == nil && m != texMagic {
		return h, fmt.Errorf("%w: magic %q", ErrInvalidTexture, m)
	}
	tr.magic() // TEXI0001
	h.format = tr.uint32()
	tr.uint32() // flags
	tr.uint32() // texture width
	tr.uint32() // texture height
	h.width = tr.uint32()
	h.height = tr.uint32()
	tr.uint32()
	h.container = tr.magic()
	h.images = tr.uint32()
	switch h.container {
	case "TEXB0001", "TEXB0002":
	case "TEXB0003":
		tr.uint32() // image format
	default:
		if tr.err == nil {
			return h, fmt.Errorf("%w: container %q", ErrInvalidTexture, h.container)
		}
	}
	return h, tr.err
}

func readMipmap(tr *texReader, container string) (mipmap, error) {
	m := mipmap{width: tr.uint32(), height: tr.uint32()}
	var compressed bool
	var size uint32
	if container != "TEXB0001" {
		compressed = tr.uint32() == 1
		size = tr.uint32()
	}
	m.data = tr.bytes(tr.uint32())
	if tr.err != nil {
		return m, tr.err
	}
	if !compressed {
		return m, nil
	}

	utils.Debug("    Decompressing LZ4: %d -> %d", len(m.data), size)
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(m.data, out)
	if err != nil {
		return m, fmt.Errorf("%w: lz4: %w", ErrInvalidTexture, err)
	}
	m.data = out[:n]
	return m, nil
}

func decodePixels(format uint32, m mipmap) ([]byte, error) {
	w, h := m.width, m.height
	blocks := ((w + 3) / 4) * ((h + 3) / 4)
	rgba := w * h * 4
	size := uint32(len(m.data))

	switch {
	case size == rgba:
		utils.Debug("    Type: RGBA")
		return m.data, nil
	case format == formatR8 && size == rgba/4:
		utils.Debug("    Type: R8")
		pix := make([]byte, rgba)
		for i, v := range m.data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == formatRG88 && size == rgba/2:
		utils.Debug("    Type: RG88")
		pix := make([]byte, rgba)
		for i := 0; i < int(w*h); i++ {
			// Second channel is opacity.
			v := m.data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, v
		}
		return pix, nil
	case format == formatDXT5 || format == formatDXT3 || (format != formatDXT1 && size == blocks*16):
		utils.Debug("    Type: DXT5")
		pix, err := dxt.DecodeDXT5(m.data, uint(w), uint(h))
		if err != nil {
			return nil, err
		}
		fixAlpha(pix, int(w), int(h))
		return pix, nil
	case format == formatDXT1 || size == blocks*8:
		utils.Debug("    Type: DXT1")
		return dxt.DecodeDXT1(m.data, uint(w), uint(h))
	}
	return nil, fmt.Errorf("%w: unsupported format %d with size %d", ErrInvalidTexture, format, size)
}

// fixAlpha hardens the soft alpha DXT5 leaves on cut-out edges.
func fixAlpha(pix []byte, width, height int) {
	const (
		alphaThreshold = 200
		edgeThreshold  = 2
	)
	stride := width * 4
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := (y*width + x) * 4
			alpha := pix[idx+3]
			if alpha > alphaThreshold {
				pix[idx+3] = 255
				continue
			}
			pix[idx+3] = 0
			if x == 0 || x == width-1 || y == 0 || y == height-1 {
				continue
			}
			left, right := pix[idx-4+3], pix[idx+4+3]
			up, down := pix[idx-stride+3], pix[idx+stride+3]
			if (left > edgeThreshold && right > edgeThreshold) || (up > edgeThreshold && down > edgeThreshold) {
				pix[idx+3] = 255
			}
		}
	}
}
