package build

import (
	"github.com/storefront-tools/meshbuild/internal/artifact"
)

// GenerationResult is returned once per build invocation. It is not persisted
// beyond the process except via the metadata embedded in the artifact.
type GenerationResult struct {
	Regenerated bool                        `json:"regenerated"`
	Reason      string                      `json:"reason"`
	Metadata    artifact.GenerationMetadata `json:"metadata"`
}
