package build

import (
	"github.com/storefront-tools/meshbuild/internal/artifact"
	"github.com/storefront-tools/meshbuild/internal/hashing"
)

// Regeneration reasons, surfaced verbatim to the user and to metrics.
const (
	ReasonForced        = "forced"
	ReasonNoArtifact    = "no prior artifact"
	ReasonNoMetadata    = "no metadata found"
	ReasonTemplateDiff  = "template changed"
	ReasonConfigDiff    = "configuration changed"
	ReasonUnchanged     = "template and configuration unchanged"
	ReasonFormatChanged = "metadata format changed"
)

// Decision is the regeneration gate's verdict.
type Decision struct {
	Needed bool
	Reason string
}

// Decide applies the regeneration decision table. It is a pure function so it
// can be tested without touching the filesystem. Rules are evaluated in order,
// first match wins:
//
//  1. force                               -> regenerate ("forced")
//  2. no previous metadata                -> regenerate ("no prior artifact" / "no metadata found")
//  3. metadata format version mismatch    -> regenerate ("metadata format changed")
//  4. template digest differs             -> regenerate ("template changed")
//  5. config digest differs               -> regenerate ("configuration changed")
//  6. otherwise                           -> skip ("template and configuration unchanged")
//
// artifactExisted distinguishes "file missing" from "file present but without
// recoverable metadata" purely for reason wording; both regenerate.
func Decide(currentTemplate, currentConfig hashing.Digest, prev *artifact.GenerationMetadata, artifactExisted, force bool) Decision {
	if force {
		return Decision{Needed: true, Reason: ReasonForced}
	}
	if prev == nil {
		if artifactExisted {
			return Decision{Needed: true, Reason: ReasonNoMetadata}
		}
		return Decision{Needed: true, Reason: ReasonNoArtifact}
	}
	if prev.FormatVersion != artifact.FormatVersion {
		return Decision{Needed: true, Reason: ReasonFormatChanged}
	}
	if prev.TemplateDigest != currentTemplate {
		return Decision{Needed: true, Reason: ReasonTemplateDiff}
	}
	if prev.ConfigDigest != currentConfig {
		return Decision{Needed: true, Reason: ReasonConfigDiff}
	}
	return Decision{Needed: false, Reason: ReasonUnchanged}
}
