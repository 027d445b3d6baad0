package backup

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bug-c/github-backup/internal/lock"
	"github.com/bug-c/github-backup/repository"
)

const defaultDirMode fs.FileMode = os.FileMode(0755) // 'rwxr-xr-x'

// RepoLister enumerates an organization's repositories via the remote API.
type RepoLister interface {
	ListOrgRepositories(ctx context.Context, org string) ([]repository.Descriptor, error)
}

// Summary is the aggregate outcome of one backup run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Start     time.Time
	End       time.Time
}

// Duration returns how long the run took.
func (s Summary) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Runner drives one backup run across all configured organizations.
type Runner struct {
	conf   Config
	lister RepoLister
	auth   repository.Auth
	envs   []string // envs which will be passed to git commands
	log    *slog.Logger

	lock    lock.Mutex // guards summary counters updated by workers
	summary Summary

	// syncFn performs the sync of one repository, replaced in tests
	syncFn func(ctx context.Context, desc repository.Descriptor, orgDir string) repository.Result
}

// NewRunner creates a runner from the given config. Nothing is synced
// until Run() is called.
func NewRunner(conf Config, lister RepoLister, auth repository.Auth, envs []string, log *slog.Logger) (*Runner, error) {
	if err := conf.ValidateAndApplyDefaults(); err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	r := &Runner{
		conf:   conf,
		lister: lister,
		auth:   auth,
		envs:   envs,
		log:    log,
	}
	r.syncFn = r.syncRepository

	return r, nil
}

// Run processes every configured organization in order and returns the
// finalized summary. A failure listing one organization skips that
// organization only, a failure syncing one repository is counted and the
// run moves on.
func (r *Runner) Run(ctx context.Context) Summary {
	r.lock.Lock()
	r.summary = Summary{Start: time.Now()}
	r.lock.Unlock()

	if err := os.MkdirAll(r.conf.Backup.Path, defaultDirMode); err != nil {
		r.log.Error("unable to create backup root dir", "path", r.conf.Backup.Path, "err", err)
	} else {
		for _, org := range r.conf.Organizations {
			if err := r.runOrg(ctx, org); err != nil {
				r.log.Error("error processing organization", "org", org, "err", err)
			}
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.summary.End = time.Now()
	return r.summary
}

func (r *Runner) runOrg(ctx context.Context, org string) error {
	log := r.log.With("org", org)
	log.Info("processing organization")

	repos, err := r.lister.ListOrgRepositories(ctx, org)
	if err != nil {
		return fmt.Errorf("unable to list repositories err:%w", err)
	}

	orgDir := filepath.Join(r.conf.Backup.Path, org)
	if err := os.MkdirAll(orgDir, defaultDirMode); err != nil {
		return fmt.Errorf("unable to create org backup dir err:%w", err)
	}

	log.Debug("syncing repositories", "count", len(repos))

	// bounded worker pool. every repository has its own disjoint clone
	// path so workers share no state beyond the summary counters
	sem := make(chan struct{}, r.conf.Backup.Concurrency)
	var wg sync.WaitGroup
	for _, desc := range repos {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			r.record(r.syncFn(ctx, desc, orgDir))
		}()
	}
	wg.Wait()

	return nil
}

func (r *Runner) syncRepository(ctx context.Context, desc repository.Descriptor, orgDir string) repository.Result {
	repo, err := repository.New(desc, orgDir, r.auth, r.envs, r.log)
	if err != nil {
		return repository.Result{Repo: desc.Name, Outcome: repository.Failed, Err: err}
	}

	sCtx, cancel := context.WithTimeout(ctx, r.conf.Backup.SyncTimeout)
	defer cancel()

	return repo.Sync(sCtx)
}

func (r *Runner) record(res repository.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.summary.Total++
	if res.Success() {
		r.summary.Succeeded++
	} else {
		r.summary.Failed++
	}
}
