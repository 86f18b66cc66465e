// Package gitsync keeps a local checkout of a published documentation branch
// up to date so the daemon can serve navigation data built elsewhere.
package gitsync

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/retry"
)

// Result describes one synchronisation.
type Result struct {
	// Path is the checkout root.
	Path string `json:"path"`
	// SiteDir is Path joined with the configured subdirectory.
	SiteDir string `json:"site_dir"`
	Branch  string `json:"branch"`
	Commit  string `json:"commit"`
	// Previous is the commit before the sync; empty after a fresh clone.
	Previous string `json:"previous,omitempty"`
	Cloned   bool   `json:"cloned"`
	Changed  bool   `json:"changed"`
}

// Syncer clones or fast-forwards one repository.
type Syncer struct {
	cfg    config.GitConfig
	policy retry.Policy
	logger *slog.Logger
}

// New creates a syncer for cfg.
func New(cfg config.GitConfig, policy retry.Policy, logger *slog.Logger) (*Syncer, error) {
	if cfg.URL == "" {
		return nil, errors.ConfigError("git url is required").Build()
	}
	if cfg.Workdir == "" {
		return nil, errors.ConfigError("git workdir is required").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{cfg: cfg, policy: policy, logger: logger}, nil
}

// SiteDir is where the navigation data appears once synced.
func (s *Syncer) SiteDir() string {
	return filepath.Join(s.cfg.Workdir, s.cfg.Subdir)
}

// Sync clones the repository when no checkout exists and otherwise fetches
// and fast-forwards it. Transient failures are retried with the policy.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	var res *Result
	err := s.policy.Do(ctx, "git sync", func(ctx context.Context) error {
		var err error
		if _, statErr := os.Stat(filepath.Join(s.cfg.Workdir, ".git")); statErr == nil {
			res, err = s.update(ctx)
		} else {
			res, err = s.clone(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	res.SiteDir = s.SiteDir()
	return res, nil
}

func (s *Syncer) clone(ctx context.Context) (*Result, error) {
	s.logger.Debug("Cloning repository", logfields.URL(s.cfg.URL), slog.String("branch", s.cfg.Branch), logfields.Path(s.cfg.Workdir))
	if err := os.RemoveAll(s.cfg.Workdir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to clear workdir").
			WithContext("path", s.cfg.Workdir).
			Build()
	}
	auth, err := authMethod(s.cfg.Auth)
	if err != nil {
		return nil, err
	}
	opts := &git.CloneOptions{URL: s.cfg.URL, Auth: auth, Tags: git.NoTags}
	if s.cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.cfg.Branch)
		opts.SingleBranch = true
	}
	repository, err := git.PlainCloneContext(ctx, s.cfg.Workdir, false, opts)
	if err != nil {
		// A half-written clone would be mistaken for a checkout next time.
		_ = os.RemoveAll(s.cfg.Workdir)
		return nil, classify(err, "clone", s.cfg.URL)
	}
	head, err := repository.Head()
	if err != nil {
		return nil, classify(err, "clone", s.cfg.URL)
	}
	s.logger.Info("Repository cloned",
		logfields.URL(s.cfg.URL),
		slog.String("branch", head.Name().Short()),
		slog.String("commit", short(head.Hash())))
	return &Result{
		Path:    s.cfg.Workdir,
		Branch:  head.Name().Short(),
		Commit:  head.Hash().String(),
		Cloned:  true,
		Changed: true,
	}, nil
}

func (s *Syncer) update(ctx context.Context) (*Result, error) {
	repository, err := git.PlainOpen(s.cfg.Workdir)
	if err != nil {
		return nil, classify(err, "open", s.cfg.URL)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return nil, classify(err, "worktree", s.cfg.URL)
	}
	auth, err := authMethod(s.cfg.Auth)
	if err != nil {
		return nil, err
	}
	fetch := &git.FetchOptions{
		RemoteName: "origin",
		Auth:       auth,
		Tags:       git.NoTags,
		RefSpecs:   []ggitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
	}
	if err := repository.FetchContext(ctx, fetch); err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, classify(err, "fetch", s.cfg.URL)
	}

	branch := s.cfg.Branch
	if branch == "" {
		head, err := repository.Head()
		if err != nil || !head.Name().IsBranch() {
			return nil, errors.GitError("cannot determine branch to sync").
				WithContext("path", s.cfg.Workdir).
				Build()
		}
		branch = head.Name().Short()
	}
	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return nil, classify(err, "fetch", s.cfg.URL)
	}
	before, err := repository.Head()
	if err != nil {
		return nil, classify(err, "update", s.cfg.URL)
	}
	res := &Result{
		Path:     s.cfg.Workdir,
		Branch:   branch,
		Commit:   remoteRef.Hash().String(),
		Previous: before.Hash().String(),
		Changed:  before.Hash() != remoteRef.Hash(),
	}
	if !res.Changed {
		s.logger.Debug("Repository already up to date", slog.String("branch", branch), slog.String("commit", short(before.Hash())))
		return res, nil
	}

	ff, err := isAncestor(repository, before.Hash(), remoteRef.Hash())
	if err != nil {
		s.logger.Warn("Ancestor check failed", logfields.Error(err))
	}
	if !ff && !s.cfg.ResetOnDiverge {
		return nil, errors.GitError("local branch diverged from remote (set git.reset_on_diverge to override)").
			WithContext("branch", branch).
			WithContext("local", short(before.Hash())).
			WithContext("remote", short(remoteRef.Hash())).
			Build()
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch), Force: true}); err != nil {
		return nil, classify(err, "checkout", s.cfg.URL)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return nil, classify(err, "reset", s.cfg.URL)
	}
	if ff {
		s.logger.Info("Fast-forwarded repository", slog.String("branch", branch),
			slog.String("from", short(before.Hash())), slog.String("to", short(remoteRef.Hash())))
	} else {
		s.logger.Warn("Diverged branch hard reset", slog.String("branch", branch),
			slog.String("from", short(before.Hash())), slog.String("to", short(remoteRef.Hash())))
	}
	return res, nil
}

func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, fmt.Errorf("load commit %s: %w", short(h), err)
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}

func short(h plumbing.Hash) string { return h.String()[:8] }
