package repository

import (
	"context"
	"fmt"
	"strings"
)

// resolveBranch points the working copy of a non-mirror clone at the best
// available remote branch and returns its name. It prefers the default
// branch reported by the API when its remote ref exists and otherwise
// falls back to scanning the clone's known remote branches. An empty
// branch with nil error means the clone has no remote branches at all,
// which is reported as a warning, not a failure.
func (r *Repository) resolveBranch(ctx context.Context) (string, error) {
	if r.desc.DefaultBranch != "" {
		candidate := "origin/" + r.desc.DefaultBranch
		// git show-ref --verify --quiet refs/remotes/origin/<default-branch>
		if _, err := r.git(ctx, r.dir, "show-ref", "--verify", "--quiet",
			"refs/remotes/"+candidate); err == nil {
			// the ref exists so a reset failure here is a hard failure
			// git reset --hard origin/<default-branch>
			if _, err := r.git(ctx, r.dir, "reset", "--hard", candidate); err != nil {
				return "", err
			}
			r.log.Debug("reset to default branch", "branch", candidate)
			return candidate, nil
		}
		r.log.Warn("default branch not found, looking for available branches", "branch", candidate)
	}

	// errors enumerating branches are a hard failure for this repository
	// git branch -r
	out, err := r.git(ctx, r.dir, "branch", "-r")
	if err != nil {
		return "", fmt.Errorf("unable to list remote branches err:%w", err)
	}

	branches := ParseRemoteBranches(out)
	r.log.Debug("available remote branches", "branches", branches)

	branch := SelectBranch(branches)
	if branch == "" {
		r.log.Warn("no remote branches found, skipping reset")
		return "", nil
	}

	r.log.Info("resetting to fallback branch", "branch", branch)
	// git reset --hard <branch>
	if _, err := r.git(ctx, r.dir, "reset", "--hard", branch); err != nil {
		return "", err
	}
	return branch, nil
}

// ParseRemoteBranches parses `git branch -r` output into an ordered list of
// remote branch names. Symbolic entries like "origin/HEAD -> origin/main"
// are skipped.
func ParseRemoteBranches(out string) []string {
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "->") {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}

// SelectBranch picks the branch to reset onto from the enumerated remote
// branches: one named main, else one named master, else the first entry.
// The trailing fallback keeps whatever order git returned, which is not
// guaranteed to be stable across git versions.
func SelectBranch(branches []string) string {
	for _, b := range branches {
		if strings.HasSuffix(b, "/main") {
			return b
		}
	}
	for _, b := range branches {
		if strings.HasSuffix(b, "/master") {
			return b
		}
	}
	if len(branches) > 0 {
		return branches[0]
	}
	return ""
}
