package convert

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/image/bmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type texFile struct {
	format        uint32
	width, height uint32
	container     string
	mipW, mipH    uint32
	data          []byte
	compress      bool
}

func tag(s string) []byte {
	return append([]byte(s), 0)
}

func (tf texFile) bytes(t *testing.T) []byte {
	t.Helper()
	var b bytes.Buffer
	u32 := func(v uint32) { binary.Write(&b, binary.LittleEndian, v) }

	b.Write(tag(texMagic))
	b.Write(tag("TEXI0001"))
	u32(tf.format)
	u32(0)
	u32(tf.mipW)
	u32(tf.mipH)
	u32(tf.width)
	u32(tf.height)
	u32(0)
	b.Write(tag(tf.container))
	u32(1)
	if tf.container == "TEXB0003" {
		u32(0)
	}
	u32(1)
	u32(tf.mipW)
	u32(tf.mipH)

	payload := tf.data
	if tf.container != "TEXB0001" {
		if tf.compress {
			dst := make([]byte, lz4.CompressBlockBound(len(tf.data)))
			n, err := lz4.CompressBlock(tf.data, dst, nil)
			require.NoError(t, err)
			require.NotZero(t, n, "test payload must be compressible")
			payload = dst[:n]
			u32(1)
		} else {
			u32(0)
		}
		u32(uint32(len(tf.data)))
	}
	u32(uint32(len(payload)))
	b.Write(payload)
	return b.Bytes()
}

func solid(w, h int, c color.RGBA) []byte {
	pix := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		pix = append(pix, c.R, c.G, c.B, c.A)
	}
	return pix
}

func TestDecodeTexRGBA(t *testing.T) {
	teal := color.RGBA{10, 120, 130, 255}
	for _, container := range []string{"TEXB0001", "TEXB0002", "TEXB0003"} {
		t.Run(container, func(t *testing.T) {
			tf := texFile{
				container: container,
				width:     6,
				height:    5,
				mipW:      8,
				mipH:      8,
				data:      solid(8, 8, teal),
				compress:  container != "TEXB0001",
			}
			img, err := DecodeTex(bytes.NewReader(tf.bytes(t)))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 6, 5), img.Bounds())
			assert.Equal(t, teal, img.At(3, 2))
		})
	}
}

func TestDecodeTexGray(t *testing.T) {
	r8 := texFile{format: formatR8, container: "TEXB0002", width: 4, height: 4, mipW: 4, mipH: 4, data: bytes.Repeat([]byte{77}, 16)}
	img, err := DecodeTex(bytes.NewReader(r8.bytes(t)))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{77, 77, 77, 255}, img.At(1, 1))

	rg := texFile{format: formatRG88, container: "TEXB0002", width: 2, height: 2, mipW: 2, mipH: 2, data: []byte{1, 200, 1, 200, 1, 200, 1, 200}}
	img, err = DecodeTex(bytes.NewReader(rg.bytes(t)))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{200, 200, 200, 200}, img.At(0, 1))
}

func TestDecodeTexErrors(t *testing.T) {
	_, err := DecodeTex(bytes.NewReader([]byte("TEXV0004\x00TEXI0001\x00")))
	assert.ErrorIs(t, err, ErrInvalidTexture)

	tf := texFile{container: "TEXB0009", width: 1, height: 1, mipW: 1, mipH: 1, data: solid(1, 1, color.RGBA{})}
	_, err = DecodeTex(bytes.NewReader(tf.bytes(t)))
	assert.ErrorIs(t, err, ErrInvalidTexture)

	tf = texFile{format: 99, container: "TEXB0002", width: 4, height: 4, mipW: 4, mipH: 4, data: []byte{1, 2, 3}}
	_, err = DecodeTex(bytes.NewReader(tf.bytes(t)))
	assert.ErrorIs(t, err, ErrInvalidTexture)

	full := texFile{container: "TEXB0002", width: 2, height: 2, mipW: 2, mipH: 2, data: solid(2, 2, color.RGBA{})}.bytes(t)
	_, err = DecodeTex(bytes.NewReader(full[:len(full)-3]))
	assert.Error(t, err, "truncated data")
}

func TestCacheWritesPNG(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{255, 0, 0, 255}
	tex := filepath.Join(dir, "brick.tex")
	tf := texFile{container: "TEXB0002", width: 4, height: 4, mipW: 4, mipH: 4, data: solid(4, 4, red), compress: true}
	require.NoError(t, os.WriteFile(tex, tf.bytes(t), 0o644))

	out := filepath.Join(dir, "out")
	c := Cache{OutDir: out}
	img, err := c.Load(tex)
	require.NoError(t, err)
	assert.Equal(t, red, img.At(0, 0))

	cached := filepath.Join(out, "brick.png")
	require.FileExists(t, cached)

	// The cached PNG wins over the source from now on.
	require.NoError(t, os.WriteFile(tex, []byte("garbage"), 0o644))
	img, err = c.Load(tex)
	require.NoError(t, err)
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestCacheLoadsPlainImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dot.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	got, err := Cache{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), got.Bounds())
}

func TestCacheLoadsBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dot.bmp")
	img := image.NewRGBA(image.Rect(0, 0, 5, 2))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())

	got, err := Cache{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 2), got.Bounds())
}

func TestCacheScalesLargeImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.png")
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	got, err := Cache{MaxSize: 4}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Bounds().Dx())
	assert.Equal(t, 2, got.Bounds().Dy())

	got, err = Cache{MaxSize: 32}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Bounds().Dx())
}

func TestConvertAll(t *testing.T) {
	root := t.TempDir()
	good := texFile{container: "TEXB0001", width: 2, height: 2, mipW: 2, mipH: 2, data: solid(2, 2, color.RGBA{1, 2, 3, 255})}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.tex"), good.bytes(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "b.tex"), good.bytes(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.tex"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hi"), 0o644))

	n, err := Cache{}.ConvertAll(root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(root, "nested", "b.png"))
	assert.NoFileExists(t, filepath.Join(root, "broken.png"))
}

func writePkg(t *testing.T, path string, files map[string]string, order []string) {
	t.Helper()
	var header, data bytes.Buffer
	str := func(s string) {
		binary.Write(&header, binary.LittleEndian, uint32(len(s)))
		header.WriteString(s)
	}
	str("PKGV0001")
	binary.Write(&header, binary.LittleEndian, uint32(len(order)))
	for _, name := range order {
		str(name)
		binary.Write(&header, binary.LittleEndian, uint32(data.Len()))
		binary.Write(&header, binary.LittleEndian, uint32(len(files[name])))
		data.WriteString(files[name])
	}
	require.NoError(t, os.WriteFile(path, append(header.Bytes(), data.Bytes()...), 0o644))
}

func TestExtractPkg(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "scene.pkg")
	files := map[string]string{
		"scene.json":           `{"name": "packed"}`,
		"materials/stone.tex":  "tex-bytes",
		"materials/readme.txt": "",
	}
	writePkg(t, pkg, files, []string{"scene.json", "materials/stone.tex", "materials/readme.txt"})

	out := filepath.Join(dir, "out")
	require.NoError(t, ExtractPkg(pkg, out))
	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestExtractPkgRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "evil.pkg")
	writePkg(t, pkg, map[string]string{"../escape.txt": "x"}, []string{"../escape.txt"})

	err := ExtractPkg(pkg, filepath.Join(dir, "out"))
	assert.ErrorContains(t, err, "escapes")
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}
