package build

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cirrusrun/internal/api"
	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/retry"
	"git.home.luguber.info/inful/cirrusrun/internal/testutil"
)

// fakeCirrus routes GraphQL operations by operation name and serves task logs.
type fakeCirrus struct {
	*httptest.Server

	mu       sync.Mutex
	ops      map[string]func(vars map[string]any) string
	logs     map[string]string
	calls    map[string]int
	vars     map[string][]map[string]any
	logCalls int
}

func newFakeCirrus(t *testing.T) *fakeCirrus {
	t.Helper()
	f := &fakeCirrus{
		ops:   map[string]func(map[string]any) string{},
		logs:  map[string]string{},
		calls: map[string]int{},
		vars:  map[string][]map[string]any{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCirrus) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodGet {
		f.logCalls++
		text, ok := f.logs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, text)
		return
	}

	var req api.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for name, handler := range f.ops {
		if strings.Contains(req.Query, name+"(") {
			f.calls[name]++
			f.vars[name] = append(f.vars[name], req.Variables)
			_, _ = io.WriteString(w, handler(req.Variables))
			return
		}
	}
	_, _ = io.WriteString(w, `{"errors": [{"message": "unknown operation"}]}`)
}

func (f *fakeCirrus) handle(op string, fn func(vars map[string]any) string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops[op] = fn
}

func (f *fakeCirrus) reply(op, body string) {
	f.handle(op, func(map[string]any) string { return body })
}

// statusSequence answers GetBuild with the given statuses in order, repeating the last.
func (f *fakeCirrus) statusSequence(statuses ...string) {
	n := 0
	f.handle("GetBuild", func(map[string]any) string {
		s := statuses[min(n, len(statuses)-1)]
		n++
		return `{"data": {"build": {"status": "` + s + `"}}}`
	})
}

func (f *fakeCirrus) setLog(path, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[path] = text
}

func (f *fakeCirrus) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCirrus) varsOf(op string, i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vars[op][i]
}

func (f *fakeCirrus) logRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logCalls
}

func newTestService(t *testing.T, f *fakeCirrus) (*Service, *testutil.SteppingClock) {
	t.Helper()
	clock := testutil.NewSteppingClock()
	client, err := api.New("faketoken",
		api.WithURL(f.URL+"/graphql"),
		api.WithClock(clock),
		api.WithPolicy(retry.NewPolicy(3, 0, 0)),
	)
	require.NoError(t, err)
	return NewService(client, WithClock(clock)), clock
}

func TestResolveRepository_FirstExactMatch(t *testing.T) {
	f := newFakeCirrus(t)
	f.reply("GetRepos", `{"data": {"githubRepositories": [
		{"id": "1", "name": "cirrus-run-extra"},
		{"id": "2", "name": ".cirrus-ci-jobs"},
		{"id": "3", "name": ".cirrus-ci-jobs"}
	]}}`)
	svc, _ := newTestService(t, f)

	id, err := svc.ResolveRepository(t.Context(), "sio", ".cirrus-ci-jobs")

	require.NoError(t, err)
	assert.Equal(t, "2", id)
	assert.Equal(t, "sio", f.varsOf("GetRepos", 0)["owner"])
}

func TestResolveRepository_NotFound(t *testing.T) {
	f := newFakeCirrus(t)
	f.reply("GetRepos", `{"data": {"githubRepositories": [{"id": "1", "name": "Cirrus-Run"}]}}`)
	svc, _ := newTestService(t, f)

	_, err := svc.ResolveRepository(t.Context(), "sio", "cirrus-run")

	require.Error(t, err)
	assert.True(t, cierrors.IsCategory(err, cierrors.CategoryQuery))
	assert.Contains(t, err.Error(), "repo not found: sio/cirrus-run")
	assert.Equal(t, 1, f.callCount("GetRepos"), "logical mismatches are not retried")
}

func TestCreateBuild(t *testing.T) {
	f := newFakeCirrus(t)
	f.reply("ScheduleCustomBuild", `{"data": {"createBuild": {"build": {"id": "5735044040884224", "status": "CREATED"}}}}`)
	svc, clock := newTestService(t, f)

	id, err := svc.CreateBuild(t.Context(), "4749235174244352", "", "task:\n  script: true\n")

	require.NoError(t, err)
	assert.Equal(t, "5735044040884224", id)
	vars := f.varsOf("ScheduleCustomBuild", 0)
	assert.Equal(t, "4749235174244352", vars["repo"])
	assert.Equal(t, "master", vars["branch"])
	assert.Equal(t, "task:\n  script: true\n", vars["config"])
	assert.Equal(t, "cirrus-run job "+strconv.FormatInt(clock.Now().Unix(), 10), vars["mutation_id"])
}

func TestCreateBuild_MissingID(t *testing.T) {
	f := newFakeCirrus(t)
	f.reply("ScheduleCustomBuild", `{"data": {"createBuild": null}}`)
	svc, _ := newTestService(t, f)

	_, err := svc.CreateBuild(t.Context(), "1", "main", "")

	require.Error(t, err)
	assert.True(t, cierrors.IsCategory(err, cierrors.CategoryQuery))
}

func TestCreateBuild_TransportErrorPropagates(t *testing.T) {
	f := newFakeCirrus(t)
	f.reply("ScheduleCustomBuild", `{"errors": [{"message": "Permission denied"}]}`)
	svc, _ := newTestService(t, f)

	_, err := svc.CreateBuild(t.Context(), "1", "main", "")

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 4, f.callCount("ScheduleCustomBuild"))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://cirrus-ci.com/build/42", BuildURL("42"))
}
