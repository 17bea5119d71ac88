package itemtext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-itemtext/internal/fileutil"
)

// AssetExtension is the file extension of rendered assets.
const AssetExtension = ".png"

const dirPerm = 0o750

// assetNamespace seeds the UUIDv5 suffix of sanitized asset names.
var assetNamespace = uuid.MustParse("6f0c55a2-3e1d-5b7a-9c44-2a8d1e0b7f13")

// AssetManager owns the directory rendered images are written to.
// It holds no mutable state, so one manager may be shared by any number of
// concurrent pipelines.
type AssetManager struct {
	dir    string
	logger zerolog.Logger
}

// NewAssetManager resolves dir to an absolute path and creates it if needed.
func NewAssetManager(dir string, logger zerolog.Logger) (*AssetManager, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty asset directory", ErrAssetWrite)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetWrite, err)
	}

	m := &AssetManager{dir: abs, logger: logger}
	if err := m.EnsureDir(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dir returns the absolute asset directory.
func (m *AssetManager) Dir() string {
	return m.dir
}

// EnsureDir creates the asset directory. Safe to call when it already exists.
func (m *AssetManager) EnsureDir() error {
	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrAssetWrite, m.dir, err)
	}
	return nil
}

// PathFor returns the asset path for identifier.
//
// Filename-safe lowercase identifiers map to "<dir>/<identifier>.png".
// Others are sanitized and suffixed with a UUIDv5 of the original
// identifier, so two distinct identifiers never share a path, even on
// case-insensitive filesystems where "Q1" and "q1" name the same file. The
// same identifier always gets the same path.
func (m *AssetManager) PathFor(identifier string) string {
	name, safe := fileutil.SafeName(identifier)
	if !safe || strings.ToLower(name) != name {
		name += "-" + uuid.NewSHA1(assetNamespace, []byte(identifier)).String()
	}
	return filepath.Join(m.dir, name+AssetExtension)
}

// Remove deletes the asset at path. A missing file is not an error, and
// any other failure is logged and swallowed so that cleanup never hides the
// error that preceded it.
func (m *AssetManager) Remove(path string) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	m.logger.Warn().Err(err).Str("asset", path).Msg("failed to remove asset")
}
