package scene

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decoder is satisfied by the json, yaml and toml decoders.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

var decoders = map[string]DecoderFunc{
	".json": func(r io.Reader) Decoder {
		d := json.NewDecoder(r)
		d.DisallowUnknownFields()
		return d
	},
	".yaml": func(r io.Reader) Decoder { return yaml.NewDecoder(r) },
	".yml":  func(r io.Reader) Decoder { return yaml.NewDecoder(r) },
	".toml": func(r io.Reader) Decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	},
}

// DecoderFor returns the decoder for a file name by extension.
func DecoderFor(filename string) (DecoderFunc, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported scene format %q", ext)
	}
	return f, nil
}

// Read decodes and validates a scene.
func Read(r io.Reader, f DecoderFunc) (*Scene, error) {
	var s Scene
	if err := f(r).Decode(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scene file, picking the format from its extension.
func Load(filename string) (*Scene, error) {
	f, err := DecoderFor(filename)
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	s, err := Read(bufio.NewReader(fp), f)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", filename, err)
	}
	s.Dir = filepath.Dir(filename)
	return s, nil
}
