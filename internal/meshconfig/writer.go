package meshconfig

import (
	"encoding/json"
	"os"

	"github.com/storefront-tools/meshbuild/internal/artifact"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// meshFile is the on-disk shape of mesh.json as consumed by the aio CLI.
type meshFile struct {
	MeshConfig MeshConfig `json:"meshConfig"`
}

// WriteMeshJSON atomically writes the mesh configuration to path in the
// `{"meshConfig": {...}}` envelope expected by `aio api-mesh`.
func WriteMeshJSON(path string, cfg MeshConfig) error {
	data, err := json.MarshalIndent(meshFile{MeshConfig: cfg}, "", "  ")
	if err != nil {
		return mberrors.Wrap(err, mberrors.CategorySerialization, mberrors.SeverityFatal, "failed to serialize mesh config")
	}
	data = append(data, '\n')
	if err := artifact.WriteFileAtomic(path, data, 0o644); err != nil {
		return mberrors.ArtifactWriteFailed(path, err)
	}
	return nil
}

// ReadMeshJSON reads a mesh.json envelope back. Used by status tooling and
// tests; absence is surfaced as a filesystem error.
func ReadMeshJSON(path string) (MeshConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MeshConfig{}, mberrors.Wrap(err, mberrors.CategoryFileSystem, mberrors.SeverityFatal, "failed to read mesh config").
			WithContext("path", path)
	}
	var f meshFile
	if err := json.Unmarshal(data, &f); err != nil {
		return MeshConfig{}, mberrors.Wrap(err, mberrors.CategorySerialization, mberrors.SeverityFatal, "failed to parse mesh config").
			WithContext("path", path)
	}
	return f.MeshConfig, nil
}
