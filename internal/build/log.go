package build

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
)

// Task is one task of a build with the named commands whose logs can be fetched.
type Task struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Commands []Command `json:"commands"`
}

// Command is a named instruction inside a task.
type Command struct {
	Name string `json:"name"`
}

// LogURL returns where the raw log of one command lives.
func LogURL(host, taskID, command string) string {
	return fmt.Sprintf("%s/v1/task/%s/logs/%s.log", host, url.PathEscape(taskID), url.PathEscape(command))
}

// Tasks lists the tasks of a build and their commands.
func (s *Service) Tasks(ctx context.Context, buildID string) ([]Task, error) {
	var out struct {
		Build *struct {
			Tasks []Task `json:"tasks"`
		} `json:"build"`
	}
	if err := s.api.Do(ctx, getBuildLogQuery, map[string]any{"build": buildID}, &out); err != nil {
		return nil, err
	}
	if out.Build == nil {
		return nil, cierrors.QueryFailed(fmt.Sprintf("build not found: %s", buildID)).
			WithContext("build_id", buildID)
	}
	return out.Build.Tasks, nil
}

// FetchLog yields the build log in chunks: a header per task, a header per command,
// then the command's log text or a placeholder when it could not be fetched.
//
// Nothing is requested until the sequence is ranged over, and every range issues
// all requests again. The first error is yielded on its own and ends the sequence.
func (s *Service) FetchLog(ctx context.Context, buildID string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		tasks, err := s.Tasks(ctx, buildID)
		if err != nil {
			yield("", err)
			return
		}
		for _, task := range tasks {
			if !yield(fmt.Sprintf("\n## Task: %s", task.Name), nil) {
				return
			}
			for _, cmd := range task.Commands {
				if !yield(fmt.Sprintf("\n## Task instruction: %s", cmd.Name), nil) {
					return
				}
				text, err := s.commandLog(ctx, task, cmd)
				if !yield(text, err) || err != nil {
					return
				}
			}
		}
	}
}

func (s *Service) commandLog(ctx context.Context, task Task, cmd Command) (string, error) {
	logURL := LogURL(s.api.Host(), task.ID, cmd.Name)
	resp, err := s.api.Get(ctx, logURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("Log not available",
			logfields.TaskID(task.ID), logfields.Command(cmd.Name), logfields.HTTPStatus(resp.StatusCode))
		return fmt.Sprintf("Unable to fetch url: %s", logURL), nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read log %s: %w", logURL, err)
	}
	return string(body), nil
}
