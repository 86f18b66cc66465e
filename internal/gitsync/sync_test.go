package gitsync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/config"
	ferrors "git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/retry"
	helpers "git.home.luguber.info/inful/navindex/internal/testutil/testutils"
)

func fastPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, 5*time.Millisecond, 2)
}

// publishedRepo creates a source repository with a gh-pages branch holding
// navigation data under html/.
func publishedRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	repo, w, dir := helpers.SetupTestGitRepo(t)
	helpers.WriteFile(t, dir, "README.md", "# sources\n")
	helpers.CommitAll(t, w, "initial")
	helpers.CheckoutBranch(t, w, "gh-pages")
	helpers.WriteDoxygenSite(t, filepath.Join(dir, "html"))
	helpers.CommitAll(t, w, "publish docs")
	return repo, w, dir
}

func newSyncer(t *testing.T, src, workdir string, reset bool) *Syncer {
	t.Helper()
	s, err := New(config.GitConfig{
		URL:            src,
		Branch:         "gh-pages",
		Workdir:        workdir,
		Subdir:         "html",
		ResetOnDiverge: reset,
	}, fastPolicy(), nil)
	require.NoError(t, err)
	return s
}

func TestNewRequiresURLAndWorkdir(t *testing.T) {
	_, err := New(config.GitConfig{Workdir: "x"}, fastPolicy(), nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	_, err = New(config.GitConfig{URL: "x"}, fastPolicy(), nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestSyncClonesThenFastForwards(t *testing.T) {
	_, w, src := publishedRepo(t)
	workdir := filepath.Join(t.TempDir(), "checkout")
	s := newSyncer(t, src, workdir, false)

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	require.True(t, res.Cloned)
	require.True(t, res.Changed)
	require.Equal(t, "gh-pages", res.Branch)
	require.Equal(t, filepath.Join(workdir, "html"), res.SiteDir)
	helpers.NewFileAssertions(t, res.SiteDir).AssertFileExists("navtreedata.js")

	res, err = s.Sync(context.Background())
	require.NoError(t, err)
	require.False(t, res.Cloned)
	require.False(t, res.Changed)

	helpers.WriteFile(t, src, "html/extra.js", "var extra = [];")
	next := helpers.CommitAll(t, w, "more docs")

	res, err = s.Sync(context.Background())
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, next.String(), res.Commit)
	require.NotEqual(t, res.Previous, res.Commit)
	helpers.NewFileAssertions(t, res.SiteDir).AssertFileContains("extra.js", "var extra")
}

func TestSyncDivergence(t *testing.T) {
	_, srcW, src := publishedRepo(t)
	workdir := filepath.Join(t.TempDir(), "checkout")

	_, err := newSyncer(t, src, workdir, false).Sync(context.Background())
	require.NoError(t, err)

	local, err := git.PlainOpen(workdir)
	require.NoError(t, err)
	localW, err := local.Worktree()
	require.NoError(t, err)
	helpers.WriteFile(t, workdir, "local.txt", "local edit")
	helpers.CommitAll(t, localW, "local")

	helpers.WriteFile(t, src, "html/remote.js", "var remote = [];")
	remoteHead := helpers.CommitAll(t, srcW, "force pushed")

	_, err = newSyncer(t, src, workdir, false).Sync(context.Background())
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
	require.Contains(t, err.Error(), "diverged")

	res, err := newSyncer(t, src, workdir, true).Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, remoteHead.String(), res.Commit)
	helpers.NewFileAssertions(t, workdir).AssertFileNotExists("local.txt")
}

func TestSyncMissingBranchIsNotRetried(t *testing.T) {
	_, _, src := publishedRepo(t)
	s, err := New(config.GitConfig{URL: src, Branch: "nope", Workdir: filepath.Join(t.TempDir(), "c")}, fastPolicy(), nil)
	require.NoError(t, err)

	_, err = s.Sync(context.Background())
	require.Error(t, err)
	require.False(t, ferrors.IsRetryable(err))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		msg       string
		category  ferrors.ErrorCategory
		retryable bool
	}{
		{"authentication required", ferrors.CategoryAuth, false},
		{"repository not found", ferrors.CategoryNotFound, false},
		{"read tcp: i/o timeout", ferrors.CategoryNetwork, true},
		{"connection reset by peer", ferrors.CategoryNetwork, true},
		{"unsupported scheme \"ftp\"", ferrors.CategoryConfig, false},
		{"object not found", ferrors.CategoryGit, false},
	}
	for _, tc := range cases {
		err := classify(errors.New(tc.msg), "fetch", "https://example.com/docs.git")
		require.True(t, ferrors.HasCategory(err, tc.category), tc.msg)
		require.Equal(t, tc.retryable, ferrors.IsRetryable(err), tc.msg)
	}
	require.NoError(t, classify(nil, "fetch", ""))
}

func TestAuthMethod(t *testing.T) {
	m, err := authMethod(nil)
	require.NoError(t, err)
	require.Nil(t, m)

	m, err = authMethod(&config.AuthConfig{Type: config.AuthTypeToken, Token: "t0k"})
	require.NoError(t, err)
	require.Equal(t, "http-basic-auth", m.Name())

	_, err = authMethod(&config.AuthConfig{Type: config.AuthTypeBasic, Username: "u"})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = authMethod(&config.AuthConfig{Type: "kerberos"})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = authMethod(&config.AuthConfig{Type: config.AuthTypeSSH, KeyPath: filepath.Join(t.TempDir(), "missing")})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAuth))
}
