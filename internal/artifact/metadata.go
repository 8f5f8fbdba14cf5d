// Package artifact handles the generated resolver artifact: embedding and
// recovering the generation metadata line, and atomic replacement of the file
// on disk.
package artifact

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/storefront-tools/meshbuild/internal/hashing"
)

// MetadataMarker prefixes the single metadata line embedded at the top of a
// generated artifact. The line is a valid JS comment so the artifact stays
// syntactically loadable.
const MetadataMarker = "/* meshbuild-metadata: "

// metadataSuffix closes the marker comment.
const metadataSuffix = " */"

// FormatVersion identifies the metadata record layout. Bump on incompatible
// changes; a version mismatch is treated the same as absent metadata by the
// regeneration gate's callers.
const FormatVersion = "1"

// GenerationMetadata records the inputs that produced an artifact. It is
// embedded verbatim in the artifact and read back on the next build to decide
// whether regeneration is needed.
type GenerationMetadata struct {
	TemplateDigest hashing.Digest `json:"templateDigest"`
	ConfigDigest   hashing.Digest `json:"configDigest"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	FormatVersion  string         `json:"formatVersion"`
	// SourceRevision is informational provenance (repo HEAD at generation
	// time). It never participates in regeneration decisions.
	SourceRevision string `json:"sourceRevision,omitempty"`
}

// Embed prepends the metadata line to the artifact body. Any metadata line
// already present in the body is superseded (removed) first, so repeated
// embeds never stack markers.
func Embed(body string, meta GenerationMetadata) (string, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	body = stripMetadataLine(body)
	var b strings.Builder
	b.Grow(len(MetadataMarker) + len(payload) + len(metadataSuffix) + 1 + len(body))
	b.WriteString(MetadataMarker)
	b.Write(payload)
	b.WriteString(metadataSuffix)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String(), nil
}

// Extract scans the body for the metadata marker and parses the record. It
// returns ok=false when the marker is absent or the payload does not parse;
// callers treat that as "no prior metadata", never as a failure.
func Extract(body string) (GenerationMetadata, bool) {
	for line := range strings.Lines(body) {
		rest, found := strings.CutPrefix(line, MetadataMarker)
		if !found {
			continue
		}
		rest = strings.TrimRight(rest, "\n")
		payload, found := strings.CutSuffix(rest, metadataSuffix)
		if !found {
			return GenerationMetadata{}, false
		}
		var meta GenerationMetadata
		if err := json.Unmarshal([]byte(payload), &meta); err != nil {
			return GenerationMetadata{}, false
		}
		return meta, true
	}
	return GenerationMetadata{}, false
}

// stripMetadataLine removes an existing metadata line, if any.
func stripMetadataLine(body string) string {
	var b strings.Builder
	for line := range strings.Lines(body) {
		if strings.HasPrefix(line, MetadataMarker) {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
