package build

import (
	"log/slog"

	git "github.com/go-git/go-git/v5"
)

// SourceRevision resolves the repository HEAD for the directory containing the
// template, for embedding as informational provenance in the artifact
// metadata. Best effort: outside a repository, or on any git error, it
// returns "" and the metadata simply omits the field. The revision never
// participates in regeneration decisions.
func SourceRevision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	rev := head.Hash().String()[:12]

	wt, err := repo.Worktree()
	if err != nil {
		return rev
	}
	status, err := wt.Status()
	if err != nil {
		slog.Debug("Could not determine worktree status for provenance", "error", err)
		return rev
	}
	if !status.IsClean() {
		rev += "-dirty"
	}
	return rev
}
