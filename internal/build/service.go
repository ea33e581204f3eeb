package build

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/cirrusrun/internal/api"
	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
	"git.home.luguber.info/inful/cirrusrun/internal/metrics"
)

// DefaultBranch is used when CreateBuild is called without a branch.
const DefaultBranch = "master"

// WebURL is the base of human-facing build pages.
const WebURL = "https://cirrus-ci.com/build/"

// Caller is the transport the lifecycle runs on. *api.Client implements it.
type Caller interface {
	Do(ctx context.Context, query string, vars map[string]any, out any, opts ...api.CallOption) error
	Get(ctx context.Context, url string) (*http.Response, error)
	Host() string
}

// Service issues lifecycle operations for builds over a Caller.
type Service struct {
	api      Caller
	clock    clockwork.Clock
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the clock used for poll waits, elapsed time and mutation ids.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a lifecycle service on top of caller.
func NewService(caller Caller, opts ...Option) *Service {
	s := &Service{
		api:      caller,
		clock:    clockwork.NewRealClock(),
		logger:   slog.New(slog.DiscardHandler),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildURL returns the web page of a build.
func BuildURL(id string) string {
	return WebURL + id
}

// ResolveRepository returns the internal id of the GitHub repository owner/name.
// The first entry with an exactly matching name wins.
func (s *Service) ResolveRepository(ctx context.Context, owner, name string) (string, error) {
	var out struct {
		Repositories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"githubRepositories"`
	}
	if err := s.api.Do(ctx, getReposQuery, map[string]any{"owner": owner}, &out); err != nil {
		return "", err
	}
	for _, repo := range out.Repositories {
		if repo.Name == name {
			s.logger.Debug("Resolved repository",
				logfields.Owner(owner), logfields.Repository(name), slog.String("repository_id", repo.ID))
			return repo.ID, nil
		}
	}
	return "", cierrors.RepositoryNotFound(owner, name)
}

// CreateBuild triggers a build of config on repoID/branch and returns the new build id.
func (s *Service) CreateBuild(ctx context.Context, repoID, branch, config string) (string, error) {
	if branch == "" {
		branch = DefaultBranch
	}
	vars := map[string]any{
		"repo":        repoID,
		"branch":      branch,
		"mutation_id": fmt.Sprintf("cirrus-run job %d", s.clock.Now().Unix()),
		"config":      config,
	}
	var out struct {
		CreateBuild *struct {
			Build *struct {
				ID     string `json:"id"`
				Status Status `json:"status"`
			} `json:"build"`
		} `json:"createBuild"`
	}
	if err := s.api.Do(ctx, createBuildMutation, vars, &out); err != nil {
		return "", err
	}
	if out.CreateBuild == nil || out.CreateBuild.Build == nil || out.CreateBuild.Build.ID == "" {
		return "", cierrors.QueryFailed("createBuild returned no build id").
			WithContext("repository_id", repoID).
			WithContext("branch", branch)
	}
	build := out.CreateBuild.Build
	s.logger.Info("Build created", logfields.BuildID(build.ID), logfields.Status(string(build.Status)), logfields.Branch(branch))
	return build.ID, nil
}

func (s *Service) buildStatus(ctx context.Context, buildID string) (Status, error) {
	var out struct {
		Build *struct {
			Status Status `json:"status"`
		} `json:"build"`
	}
	if err := s.api.Do(ctx, getBuildStatusQuery, map[string]any{"build": buildID}, &out); err != nil {
		return "", err
	}
	if out.Build == nil {
		return "", cierrors.QueryFailed(fmt.Sprintf("build not found: %s", buildID)).
			WithContext("build_id", buildID)
	}
	return out.Build.Status, nil
}
