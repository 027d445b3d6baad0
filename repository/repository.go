package repository

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bug-c/github-backup/internal/utils"
)

const (
	defaultDirMode fs.FileMode = os.FileMode(0755) // 'rwxr-xr-x'

	// markerFile is written inside the clone dir at mirror-clone time so
	// later runs can detect mirror clones without querying git config
	markerFile = ".github-backup-mirror"
)

var gitExecutablePath string

func init() {
	gitExecutablePath = exec.Command("git").String()
}

// Descriptor is the remote identity of a repository as reported by the
// GitHub API. It is an immutable snapshot fetched once per run.
type Descriptor struct {
	Name          string
	CloneURL      string
	DefaultBranch string
}

// Auth is the credential embedded into https clone URLs. Username is
// optional, tokens from GitHub App installations require the
// 'x-access-token' username.
type Auth struct {
	Username string
	Token    string
}

// Repository represents a single remote repository and its local clone
// under the organization backup dir. A Repository is safe for concurrent
// use by multiple goroutines, although two Repository values must never
// share a clone path.
type Repository struct {
	desc Descriptor
	dir  string   // absolute path to the local clone
	auth Auth     // credential embedded in the clone URL
	envs []string // envs which will be passed to git commands
	log  *slog.Logger
}

// New creates a repository whose local clone lives at backupDir/<name>.
// Nothing is touched on disk until Sync() is called.
func New(desc Descriptor, backupDir string, auth Auth, envs []string, log *slog.Logger) (*Repository, error) {
	if log == nil {
		log = slog.Default()
	}

	if desc.Name == "" {
		return nil, fmt.Errorf("repository name cannot be empty")
	}

	// the clone path is derived from the repo name, reject names which
	// would escape the backup dir or collide with special dirs
	if strings.ContainsAny(desc.Name, `/\`) ||
		desc.Name == "." || desc.Name == ".." {
		return nil, fmt.Errorf("invalid repository name '%s'", desc.Name)
	}

	if !filepath.IsAbs(backupDir) {
		return nil, fmt.Errorf("backup dir '%s' must be absolute", backupDir)
	}

	return &Repository{
		desc: desc,
		dir:  filepath.Join(backupDir, desc.Name),
		auth: auth,
		envs: envs,
		log:  log.With("repo", desc.Name),
	}, nil
}

// Directory returns the absolute path of the local clone.
func (r *Repository) Directory() string {
	return r.dir
}

// Sync clones or updates the local clone of the repository. It never
// returns an error, any git failure is converted into a Failed result with
// the captured output, so one repository can never abort a whole run.
func (r *Repository) Sync(ctx context.Context) Result {
	start := time.Now()
	defer updateSyncLatency(r.desc.Name, start)

	outcome, err := r.sync(ctx)
	recordSync(r.desc.Name, err == nil)
	if err != nil {
		r.log.Error("repository sync failed", "err", err)
		return Result{Repo: r.desc.Name, Outcome: Failed, Err: err}
	}

	r.log.Info("repository synced", "outcome", outcome, "time", time.Since(start))
	return Result{Repo: r.desc.Name, Outcome: outcome}
}

func (r *Repository) sync(ctx context.Context) (Outcome, error) {
	_, err := os.Stat(r.dir)
	switch {
	case os.IsNotExist(err):
		if err := r.clone(ctx); err != nil {
			return Failed, err
		}
		return Created, nil
	case err != nil:
		return Failed, fmt.Errorf("unable to verify clone dir err:%w", err)
	}

	if err := r.update(ctx); err != nil {
		return Failed, err
	}
	return Updated, nil
}

// clone performs a fresh mirror clone capturing every ref, branch and tag
// on the remote as first-class refs.
func (r *Repository) clone(ctx context.Context) error {
	url, err := authenticatedURL(r.desc.CloneURL, r.auth)
	if err != nil {
		return err
	}

	r.log.Info("cloning new repository", "path", r.dir)

	// git clone --mirror <url> <dir>
	if _, err := r.git(ctx, "", "clone", "--mirror", url, r.dir); err != nil {
		return err
	}

	return writeMirrorMarker(r.dir)
}

// update refreshes an existing local clone. Mirror clones track all refs
// directly and only need fetches, regular clones are reset onto the best
// available remote branch first.
func (r *Repository) update(ctx context.Context) error {
	mirror, err := r.isMirror(ctx)
	if err != nil {
		return err
	}

	r.log.Info("updating existing repository", "mirror", mirror)

	// git fetch --all
	if _, err := r.git(ctx, r.dir, "fetch", "--all"); err != nil {
		return err
	}

	if mirror {
		// git fetch --prune
		if _, err := r.git(ctx, r.dir, "fetch", "--prune"); err != nil {
			return err
		}
		// git fetch --tags --force
		_, err := r.git(ctx, r.dir, "fetch", "--tags", "--force")
		return err
	}

	branch, err := r.resolveBranch(ctx)
	if err != nil {
		return err
	}

	// a clone with no remote branches at all keeps its fetched history but
	// there is nothing to pull
	if branch != "" {
		// git pull --all
		if _, err := r.git(ctx, r.dir, "pull", "--all"); err != nil {
			return err
		}
	}

	// git fetch --tags --force
	_, err = r.git(ctx, r.dir, "fetch", "--tags", "--force")
	return err
}

// isMirror reports whether the local clone was created with --mirror. The
// marker file written at clone time is checked first, clones created by
// older runs or by hand are detected via git config.
func (r *Repository) isMirror(ctx context.Context) (bool, error) {
	ok, err := hasMirrorMarker(r.dir)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// git config --get remote.origin.mirror
	// config exits non-zero when the key is unset, treat that as non-mirror
	out, err := r.git(ctx, r.dir, "config", "--get", "remote.origin.mirror")
	if err != nil {
		return false, nil
	}
	return out == "true", nil
}

func (r *Repository) git(ctx context.Context, cwd string, args ...string) (string, error) {
	return utils.RunCommand(ctx, r.log, r.envs, cwd, gitExecutablePath, args...)
}
