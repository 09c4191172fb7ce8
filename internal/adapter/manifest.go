package adapter

import (
	"bytes"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/refix/internal/model"
)

// Manifest is the YAML form of a refix invocation, for builds that rewrite
// many artifacts with the same settings.
//
//	src: /home/ci/build/OURMAGIC
//	dst: /usr/src/project/abcdef
//	prefixes: [.rodata, .debug_str]
//	sections:
//	  .note.package: package-note.bin
type Manifest struct {
	Source      string            `yaml:"src"`
	Destination string            `yaml:"dst"`
	Prefixes    []string          `yaml:"prefixes"`
	Sections    map[string]string `yaml:"sections"`
	Workers     int               `yaml:"workers"`
	MinChunk    int               `yaml:"min_chunk"`
}

// ManifestLoader reads manifests.
type ManifestLoader interface {
	Load(path m.Path) (Manifest, error)
}

// LocalManifestLoader reads manifests from disk.
type LocalManifestLoader struct{}

// NewLocalManifestLoader constructs a LocalManifestLoader.
func NewLocalManifestLoader() *LocalManifestLoader {
	return &LocalManifestLoader{}
}

// Load decodes the manifest at path, rejecting unknown keys.
func (l *LocalManifestLoader) Load(path m.Path) (Manifest, error) {
	// #nosec G304 - manifest path is user supplied
	data, err := os.ReadFile(string(path))
	if err != nil {
		return Manifest{}, errors.Errorf("reading manifest %s: %w", path, err)
	}

	return DecodeManifest(data)
}

// DecodeManifest decodes a manifest document. An empty document is an empty manifest.
func DecodeManifest(data []byte) (Manifest, error) {
	var manifest Manifest

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&manifest); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, errors.Errorf("decoding manifest: %w", err)
	}

	return manifest, nil
}
