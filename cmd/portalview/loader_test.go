package main

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePkg(t *testing.T, path string, files [][2]string) {
	t.Helper()
	var header, data bytes.Buffer
	str := func(s string) {
		binary.Write(&header, binary.LittleEndian, uint32(len(s)))
		header.WriteString(s)
	}
	str("PKGV0001")
	binary.Write(&header, binary.LittleEndian, uint32(len(files)))
	for _, f := range files {
		str(f[0])
		binary.Write(&header, binary.LittleEndian, uint32(data.Len()))
		binary.Write(&header, binary.LittleEndian, uint32(len(f[1])))
		data.WriteString(f[1])
	}
	require.NoError(t, os.WriteFile(path, append(header.Bytes(), data.Bytes()...), 0o644))
}

func TestOpenSceneDefault(t *testing.T) {
	s, cleanup, err := openScene("")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "doorways", s.Name)
}

func TestOpenScenePackage(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "demo.PKG")
	writePkg(t, pkg, [][2]string{
		{"materials/readme.txt", "stone"},
		{"scene.yaml", "name: packed\n"},
	})

	s, cleanup, err := openScene(pkg)
	require.NoError(t, err)
	assert.Equal(t, "packed", s.Name)
	assert.FileExists(t, filepath.Join(s.Dir, "materials", "readme.txt"))

	cleanup()
	assert.NoDirExists(t, s.Dir)
}

func TestOpenScenePackageWithoutScene(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "empty.pkg")
	writePkg(t, pkg, [][2]string{{"readme.txt", "nothing here"}})

	_, cleanup, err := openScene(pkg)
	defer cleanup()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "room"}`), 0o644))

	s, cleanup, err := openScene(path)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "room", s.Name)
	assert.Equal(t, filepath.Dir(path), s.Dir)
}

func TestParseColorOr(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 255}
	assert.Equal(t, fallback, parseColorOr("", fallback))
	assert.Equal(t, fallback, parseColorOr("not a colour", fallback))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, parseColorOr("#ff0000", fallback))
}
