package config

import (
	"fmt"
	"strings"
	"time"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
)

// ShowLog controls when the build log is printed after a run.
type ShowLog string

const (
	ShowLogNever   ShowLog = "never"
	ShowLogFailure ShowLog = "failure"
	ShowLogAlways  ShowLog = "always"
)

// Wants reports whether the log should be printed for a build that failed (or not).
func (s ShowLog) Wants(failed bool) bool {
	switch s {
	case ShowLogAlways:
		return true
	case ShowLogFailure:
		return failed
	default:
		return false
	}
}

// Repo identifies the GitHub repository that owns triggered builds.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

// ParseRepo splits "owner/name". Both parts must be non-empty and there must be exactly one slash.
func ParseRepo(s string) (Repo, error) {
	if s == "" {
		return Repo{}, cierrors.ConfigRequired("github")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, cierrors.ValidationFailed("github", fmt.Sprintf("invalid repo identifier: %s", s))
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// Run holds the settings of one run invocation after flag and env resolution.
type Run struct {
	Token        string
	Repo         string
	Branch       string
	ConfigPath   string
	PollInterval time.Duration
	Timeout      time.Duration
	ShowLog      ShowLog
}

// Validate checks the settings and returns the parsed repository.
func (r Run) Validate() (Repo, error) {
	if strings.TrimSpace(r.Token) == "" {
		return Repo{}, cierrors.ConfigRequired("token")
	}
	repo, err := ParseRepo(r.Repo)
	if err != nil {
		return Repo{}, err
	}
	if r.PollInterval <= 0 {
		return Repo{}, cierrors.ValidationFailed("poll-interval", "must be positive")
	}
	if r.Timeout <= 0 {
		return Repo{}, cierrors.ValidationFailed("timeout", "must be positive")
	}
	switch r.ShowLog {
	case ShowLogNever, ShowLogFailure, ShowLogAlways, "":
	default:
		return Repo{}, cierrors.ValidationFailed("show-log", fmt.Sprintf("unknown mode %q", r.ShowLog))
	}
	return repo, nil
}
