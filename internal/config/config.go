// Package config holds the settings of a pairedio run: input files, output
// naming, compression, batch sizing and the storage backend.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seqpipe/pairedio"
)

// DefaultBasename is the output prefix used when none is configured.
const DefaultBasename = "your_output"

// Storage backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
	BackendGCS  = "gcs"
	BackendBlob = "blob"
)

// Compression names.
const (
	CompressionNone  = "none"
	CompressionGzip  = "gzip"
	CompressionBzip2 = "bzip2"
	CompressionZstd  = "zstd"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid settings")

// Settings configures a run. Zero values are replaced by defaults in
// Default and Load.
type Settings struct {
	// Input1 and Input2 are the mate 1 and mate 2 FASTQ files. Input2 is
	// empty for single-end data.
	Input1 string `yaml:"input1"`
	Input2 string `yaml:"input2"`

	// Basename prefixes every default output name.
	Basename string `yaml:"basename"`

	// Outputs overrides the default name of individual outputs, keyed by
	// read type name ("mate1", "discarded", ...).
	Outputs map[string]string `yaml:"outputs"`

	// Compression of the outputs: none, gzip, bzip2 or zstd. Inputs are
	// detected from their content.
	Compression      string `yaml:"compression"`
	CompressionLevel int    `yaml:"compression_level"`

	// Collapse adds the collapsed outputs for paired-end runs.
	Collapse bool `yaml:"collapse"`

	// BatchRecords is the number of records per chunk.
	BatchRecords int `yaml:"batch_records"`

	// Threads is the number of workers running transformation stages.
	Threads int `yaml:"threads"`

	Storage Storage `yaml:"storage"`
}

// Storage selects where inputs and outputs live.
type Storage struct {
	// Backend is disk, s3, gcs or blob.
	Backend string `yaml:"backend"`
	// Root is the directory relative paths resolve against (disk).
	Root string `yaml:"root"`
	// Bucket and Prefix address objects (s3, gcs).
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// Region and Endpoint configure S3-compatible services.
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// URL opens a gocloud.dev bucket (blob), e.g. mem:// or file:///data.
	URL string `yaml:"url"`
}

// Default returns settings with every default applied.
func Default() Settings {
	var s Settings
	s.applyDefaults()
	return s
}

// Load reads YAML settings from path and applies defaults. It does not
// validate, so command line overrides can be applied first.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	s.applyDefaults()
	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.Basename == "" {
		s.Basename = DefaultBasename
	}
	if s.Compression == "" {
		s.Compression = CompressionNone
	}
	if s.BatchRecords == 0 {
		s.BatchRecords = pairedio.DefaultBatchRecords
	}
	if s.Threads == 0 {
		s.Threads = 1
	}
	if s.Storage.Backend == "" {
		s.Storage.Backend = BackendDisk
	}
	if s.Storage.Root == "" {
		s.Storage.Root = "."
	}
}

// Validate checks the settings for errors a run would only hit later.
func (s Settings) Validate() error {
	if s.Input1 == "" {
		return fmt.Errorf("%w: input1 is required", ErrInvalid)
	}
	if s.Input2 != "" && s.Input2 == s.Input1 {
		return fmt.Errorf("%w: input1 and input2 are the same file", ErrInvalid)
	}
	switch s.Compression {
	case CompressionNone, CompressionGzip, CompressionBzip2, CompressionZstd:
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalid, s.Compression)
	}
	if s.BatchRecords < 1 {
		return fmt.Errorf("%w: batch_records must be positive, got %d", ErrInvalid, s.BatchRecords)
	}
	if s.Threads < 1 {
		return fmt.Errorf("%w: threads must be positive, got %d", ErrInvalid, s.Threads)
	}
	for name := range s.Outputs {
		if _, err := pairedio.ParseReadType(name); err != nil {
			return fmt.Errorf("%w: outputs: %v", ErrInvalid, err)
		}
	}

	switch s.Storage.Backend {
	case BackendDisk:
	case BackendS3, BackendGCS:
		if s.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required for %s", ErrInvalid, s.Storage.Backend)
		}
	case BackendBlob:
		if s.Storage.URL == "" {
			return fmt.Errorf("%w: storage.url is required for blob", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, s.Storage.Backend)
	}
	return nil
}

// Paired reports whether a mate 2 input is configured.
func (s Settings) Paired() bool {
	return s.Input2 != ""
}

// BatchLines returns the reader batch size in lines.
func (s Settings) BatchLines() int {
	return s.BatchRecords * pairedio.DefaultLinesPerRecord
}

// Mates returns the inputs to read: mate 1, and mate 2 when paired.
func (s Settings) Mates() []pairedio.ReadType {
	if s.Paired() {
		return []pairedio.ReadType{pairedio.Mate1, pairedio.Mate2}
	}
	return []pairedio.ReadType{pairedio.Mate1}
}

// OutputRoles returns the outputs a run writes, in read type order.
func (s Settings) OutputRoles() []pairedio.ReadType {
	if !s.Paired() {
		return []pairedio.ReadType{pairedio.Mate1, pairedio.Discarded}
	}
	roles := []pairedio.ReadType{pairedio.Mate1, pairedio.Mate2, pairedio.Singleton}
	if s.Collapse {
		roles = append(roles, pairedio.Collapsed, pairedio.CollapsedTruncated)
	}
	return append(roles, pairedio.Discarded)
}

// InputPath returns the configured path of a mate input.
func (s Settings) InputPath(mate pairedio.ReadType) (string, error) {
	switch mate {
	case pairedio.Mate1:
		return s.Input1, nil
	case pairedio.Mate2:
		if s.Input2 == "" {
			return "", fmt.Errorf("%w: no mate 2 input for single-end run", ErrInvalid)
		}
		return s.Input2, nil
	default:
		return "", fmt.Errorf("%w: %s is not an input", pairedio.ErrInvalidRole, mate)
	}
}

// OutputPath returns the path of an output: the override from Outputs if
// present, otherwise DefaultFilename with ext appended when non-empty.
func (s Settings) OutputPath(role pairedio.ReadType, ext string) string {
	if path, ok := s.Outputs[role.String()]; ok && path != "" {
		return path
	}
	name := DefaultFilename(s.Basename, role, s.Paired())
	if ext != "" {
		name += "." + ext
	}
	return name
}

// DefaultFilename returns the conventional output name for a read type:
//
//	single-end: basename.truncated, basename.discarded
//	paired-end: basename.pair1.truncated, basename.pair2.truncated,
//	            basename.singleton.truncated, basename.collapsed,
//	            basename.collapsed.truncated, basename.discarded
func DefaultFilename(basename string, role pairedio.ReadType, paired bool) string {
	switch role {
	case pairedio.Mate1:
		if !paired {
			return basename + ".truncated"
		}
		return basename + ".pair1.truncated"
	case pairedio.Mate2:
		return basename + ".pair2.truncated"
	case pairedio.Singleton:
		return basename + ".singleton.truncated"
	case pairedio.Collapsed:
		return basename + ".collapsed"
	case pairedio.CollapsedTruncated:
		return basename + ".collapsed.truncated"
	default:
		return basename + ".discarded"
	}
}
