package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetDirs are searched, in order, after the scene's own directory.
var AssetDirs = []string{"assets", "assets/textures", "textures"}

var textureExtensions = []string{".tex", ".png", ".jpg", ".jpeg", ".bmp", ".webp"}

var errFound = errors.New("found")

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ResolveAssetPath returns the first existing match for relPath under
// baseDir or one of AssetDirs. The baseDir join is returned when nothing
// exists so the caller's error names a sensible path.
func ResolveAssetPath(baseDir, relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}

	candidates := make([]string, 0, len(AssetDirs)+1)
	if baseDir != "" {
		candidates = append(candidates, filepath.Join(baseDir, relPath))
	}
	for _, dir := range AssetDirs {
		candidates = append(candidates, filepath.Join(dir, relPath))
	}

	for _, p := range candidates {
		if exists(p) {
			return p
		}
	}
	return candidates[0]
}

// FindTextureFile locates a texture by name, trying the known extensions
// when name has none, and falling back to a recursive walk of baseDir.
func FindTextureFile(baseDir, name string) string {
	if name == "" {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	dirs := append([]string{baseDir}, AssetDirs...)
	for _, dir := range dirs {
		if ext != "" {
			if p := filepath.Join(dir, name); exists(p) {
				return p
			}
		}
		for _, e := range textureExtensions {
			if p := filepath.Join(dir, stem+e); exists(p) {
				return p
			}
		}
	}

	if baseDir == "" || !exists(baseDir) {
		return ""
	}

	var foundPath string
	target := filepath.Base(stem)
	filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := d.Name()
		fileExt := strings.ToLower(filepath.Ext(base))
		if strings.TrimSuffix(base, filepath.Ext(base)) != target {
			return nil
		}
		for _, e := range textureExtensions {
			if fileExt == e {
				foundPath = path
				return errFound
			}
		}
		return nil
	})

	return foundPath
}
