package build

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/storefront-tools/meshbuild/internal/artifact"
	"github.com/storefront-tools/meshbuild/internal/hashing"
)

func TestDecide(t *testing.T) {
	t1 := hashing.HashBytes([]byte("template-1"))
	t2 := hashing.HashBytes([]byte("template-2"))
	c1 := hashing.HashBytes([]byte("config-1"))
	c2 := hashing.HashBytes([]byte("config-2"))

	matching := &artifact.GenerationMetadata{
		TemplateDigest: t1,
		ConfigDigest:   c1,
		FormatVersion:  artifact.FormatVersion,
	}

	tests := []struct {
		name       string
		prev       *artifact.GenerationMetadata
		existed    bool
		force      bool
		wantNeeded bool
		wantReason string
	}{
		{
			name:       "force wins over matching digests",
			prev:       matching,
			existed:    true,
			force:      true,
			wantNeeded: true,
			wantReason: ReasonForced,
		},
		{
			name:       "no artifact",
			prev:       nil,
			existed:    false,
			wantNeeded: true,
			wantReason: ReasonNoArtifact,
		},
		{
			name:       "artifact without metadata",
			prev:       nil,
			existed:    true,
			wantNeeded: true,
			wantReason: ReasonNoMetadata,
		},
		{
			name: "template changed",
			prev: &artifact.GenerationMetadata{
				TemplateDigest: t2,
				ConfigDigest:   c1,
				FormatVersion:  artifact.FormatVersion,
			},
			existed:    true,
			wantNeeded: true,
			wantReason: ReasonTemplateDiff,
		},
		{
			name: "configuration changed",
			prev: &artifact.GenerationMetadata{
				TemplateDigest: t1,
				ConfigDigest:   c2,
				FormatVersion:  artifact.FormatVersion,
			},
			existed:    true,
			wantNeeded: true,
			wantReason: ReasonConfigDiff,
		},
		{
			name: "metadata format changed",
			prev: &artifact.GenerationMetadata{
				TemplateDigest: t1,
				ConfigDigest:   c1,
				FormatVersion:  "0",
			},
			existed:    true,
			wantNeeded: true,
			wantReason: ReasonFormatChanged,
		},
		{
			name:       "unchanged",
			prev:       matching,
			existed:    true,
			wantNeeded: false,
			wantReason: ReasonUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(t1, c1, tt.prev, tt.existed, tt.force)
			require.Equal(t, tt.wantNeeded, d.Needed)
			require.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestDecideTemplatePrecedesConfig(t *testing.T) {
	// Both digests differ: the template reason wins by table order.
	prev := &artifact.GenerationMetadata{
		TemplateDigest: hashing.HashBytes([]byte("old-template")),
		ConfigDigest:   hashing.HashBytes([]byte("old-config")),
		FormatVersion:  artifact.FormatVersion,
	}
	d := Decide(hashing.HashBytes([]byte("new-template")), hashing.HashBytes([]byte("new-config")), prev, true, false)
	require.True(t, d.Needed)
	require.Equal(t, ReasonTemplateDiff, d.Reason)
}
