package convert

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"portalview/internal/utils"
)

// FileEntry is one file in a .pkg archive. Offset is relative to the end
// of the header.
type FileEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Package is a parsed .pkg header.
type Package struct {
	Version string
	Entries []FileEntry
	// dataStart is where file data begins.
	dataStart int64
}

func readPkgString(r io.Reader) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadPackage parses the header of a .pkg archive.
func ReadPackage(r io.ReadSeeker) (*Package, error) {
	version, err := readPkgString(r)
	if err != nil {
		return nil, fmt.Errorf("read package version: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	pkg := &Package{Version: version, Entries: make([]FileEntry, 0, count)}
	for i := uint32(0); i < count; i++ {
		name, err := readPkgString(r)
		if err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		e := FileEntry{Name: name}
		if err := binary.Read(r, binary.LittleEndian, &e.Offset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.Size); err != nil {
			return nil, err
		}
		pkg.Entries = append(pkg.Entries, e)
	}
	pkg.dataStart, err = r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// ExtractPkg unpacks a .pkg archive into outputDir. Entries that would
// land outside outputDir are rejected.
func ExtractPkg(pkgPath, outputDir string) error {
	utils.Debug("Unpacker: Opening package %s", pkgPath)
	f, err := os.Open(pkgPath)
	if err != nil {
		return err
	}
	defer f.Close()

	pkg, err := ReadPackage(f)
	if err != nil {
		return fmt.Errorf("%s: %w", pkgPath, err)
	}
	utils.Debug("Unpacker: Package Version: %s, File Count: %d", pkg.Version, len(pkg.Entries))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	root := filepath.Clean(outputDir)
	for i, entry := range pkg.Entries {
		if i%10 == 0 || i == len(pkg.Entries)-1 {
			utils.Debug("Unpacker: Extracting file %d/%d: %s", i+1, len(pkg.Entries), entry.Name)
		}
		destPath := filepath.Join(root, filepath.FromSlash(entry.Name))
		if destPath != root && !strings.HasPrefix(destPath, root+string(filepath.Separator)) {
			return fmt.Errorf("package entry %q escapes %s", entry.Name, outputDir)
		}
		if err := extractEntry(f, pkg.dataStart+int64(entry.Offset), int64(entry.Size), destPath); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}

	utils.Debug("Unpacker: Extraction completed successfully")
	return nil
}

func extractEntry(f io.ReadSeeker, offset, size int64, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(out, f, size); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
