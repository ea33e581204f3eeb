package build

import (
	"context"
	"fmt"
	"time"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
)

// Summary is the detailed view of a build used for status watching.
type Summary struct {
	ID                     string `json:"id"`
	Status                 Status `json:"status"`
	DurationInSeconds      *int64 `json:"durationInSeconds"`
	ClockDurationInSeconds *int64 `json:"clockDurationInSeconds"`
	BuildCreatedTimestamp  int64  `json:"buildCreatedTimestamp"`
	ChangeTimestamp        int64  `json:"changeTimestamp"`
}

// BuildSummary fetches the detailed view of one build.
func (s *Service) BuildSummary(ctx context.Context, buildID string) (*Summary, error) {
	var out struct {
		Build *Summary `json:"build"`
	}
	if err := s.api.Do(ctx, getBuildSummaryQuery, map[string]any{"build": buildID}, &out); err != nil {
		return nil, err
	}
	if out.Build == nil {
		return nil, cierrors.QueryFailed(fmt.Sprintf("build not found: %s", buildID)).
			WithContext("build_id", buildID)
	}
	return out.Build, nil
}

// WatchStatus hands every observation of the build to fn until the build stops
// running. A build the API does not know yet is retried, since freshly created
// builds can take a moment to appear. Errors from the API or from fn end the watch.
func (s *Service) WatchStatus(ctx context.Context, buildID string, interval time.Duration, fn func(*Summary) error) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	for {
		summary, err := s.BuildSummary(ctx, buildID)
		switch {
		case err == nil:
			if err := fn(summary); err != nil {
				return err
			}
			if summary.Status.Phase() != PhaseRunning {
				return nil
			}
		case cierrors.IsCategory(err, cierrors.CategoryQuery):
			s.logger.Warn("Build not visible yet", logfields.BuildID(buildID))
		default:
			return err
		}

		if err := s.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// MultiTaskBuilds returns the ids of the last `last` builds of a repository that ran
// more than one task, which is how automatically restarted tasks show up.
func (s *Service) MultiTaskBuilds(ctx context.Context, repoID string, last int) ([]string, error) {
	var out struct {
		Repository *struct {
			Builds struct {
				Edges []struct {
					Node struct {
						ID    string `json:"id"`
						Tasks []struct {
							ID string `json:"id"`
						} `json:"tasks"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"builds"`
		} `json:"repository"`
	}
	vars := map[string]any{"repo_id": repoID, "last": last}
	if err := s.api.Do(ctx, recentBuildsQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Repository == nil {
		return nil, cierrors.QueryFailed(fmt.Sprintf("repository not found: %s", repoID)).
			WithContext("repository_id", repoID)
	}

	var ids []string
	for _, edge := range out.Repository.Builds.Edges {
		if len(edge.Node.Tasks) > 1 {
			ids = append(ids, edge.Node.ID)
		}
	}
	return ids, nil
}
