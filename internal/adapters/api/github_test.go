package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/config"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/just-nibble/service-miner/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTransport is a mock implementation of http.RoundTripper for testing purposes
type MockTransport struct {
	RoundTripper func(req *http.Request) (*http.Response, error)
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripper(req)
}

func jsonResponse(req *http.Request, status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}
}

func newTestClient(t *testing.T, rt func(req *http.Request) (*http.Response, error)) *GitHubClient {
	t.Helper()
	client, err := NewGitHubClient(config.GitHubConfig{Token: "t0ken", PerPage: 2},
		&http.Client{Transport: &MockTransport{RoundTripper: rt}}, log.Discard())
	require.NoError(t, err)
	return client
}

func TestListCommitsPagesAndSortsOldestFirst(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/repos/octocat/hello/commits", req.URL.Path)
		assert.Equal(t, "Bearer t0ken", req.Header.Get("Authorization"))

		if req.URL.Query().Get("page") == "2" {
			return jsonResponse(req, http.StatusOK, `[
				{"sha":"a1","commit":{"message":"init","author":{"name":"Ann","email":"ann@x.io","date":"2020-01-01T10:00:00Z"}},"parents":[]}
			]`, nil), nil
		}

		header := http.Header{}
		header.Set("Link", `<https://api.github.com/repos/octocat/hello/commits?page=2>; rel="next"`)
		return jsonResponse(req, http.StatusOK, `[
			{"sha":"c3","commit":{"message":"merge","author":{"name":"Ann","email":"ann@x.io","date":"2020-01-03T10:00:00Z"}},
			 "author":{"login":"ann"},"parents":[{"sha":"b2"},{"sha":"side"}]},
			{"sha":"b2","commit":{"message":"second","author":{"name":"Bob","email":"bob@x.io","date":"2020-01-02T10:00:00Z"}},
			 "parents":[{"sha":"a1"}]}
		]`, header), nil
	})

	commits, err := client.ListCommits(context.Background(), "octocat", "hello", nil)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, "a1", commits[0].SHA)
	assert.Equal(t, "b2", commits[1].SHA)
	assert.Equal(t, "c3", commits[2].SHA)
	assert.Equal(t, "ann", commits[2].Author.Login)
	assert.Equal(t, []entities.ParentRef{{Position: 0, SHA: "b2"}, {Position: 1, SHA: "side"}}, commits[2].Parents)
	assert.True(t, commits[0].Date.Equal(time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestGetCommitFiles(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/repos/octocat/hello/commits/b2", req.URL.Path)
		return jsonResponse(req, http.StatusOK, `{
			"sha":"b2",
			"files":[
				{"filename":"main.py","status":"modified","additions":3,"deletions":1,"changes":4},
				{"filename":"big.py","status":"modified","additions":0,"deletions":0,"changes":0}
			]
		}`, nil), nil
	})

	files, err := client.GetCommitFiles(context.Background(), "octocat", "hello", "b2")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.py", files[0].Filename)
	assert.Equal(t, 4, files[0].Changes)
	assert.True(t, files[1].IsInconsistent())
}

func TestListIssuesSkipsPullRequests(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/repos/octocat/hello/issues", req.URL.Path)
		assert.Equal(t, "all", req.URL.Query().Get("state"))
		return jsonResponse(req, http.StatusOK, `[
			{"number":1,"title":"crash","state":"closed","user":{"login":"bob"},
			 "created_at":"2020-01-01T00:00:00Z","closed_at":"2020-01-05T00:00:00Z",
			 "labels":[{"name":"bug"}],"assignees":[{"login":"ann"}]},
			{"number":2,"title":"feature","state":"open","created_at":"2020-01-02T00:00:00Z",
			 "pull_request":{"url":"https://api.github.com/repos/octocat/hello/pulls/2"}}
		]`, nil), nil
	})

	issues, err := client.ListIssues(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, "bob", issues[0].User.Login)
	require.NotNil(t, issues[0].ClosedAt)
	assert.Equal(t, "bug", issues[0].Labels[0].Name)
	assert.Equal(t, "ann", issues[0].Assignees[0].Login)
}

func TestGetFileContentDecodesBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("print('hi')\n"))
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/repos/octocat/hello/contents/src/main.py", req.URL.Path)
		assert.Equal(t, "b2", req.URL.Query().Get("ref"))
		return jsonResponse(req, http.StatusOK,
			`{"type":"file","encoding":"base64","path":"src/main.py","content":"`+encoded+`"}`, nil), nil
	})

	data, err := client.GetFileContent(context.Background(), "octocat", "hello", "src/main.py", "b2")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
}

func TestGetFileContentNotFound(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusNotFound, `{"message":"Not Found"}`, nil), nil
	})

	_, err := client.GetFileContent(context.Background(), "octocat", "hello", "gone.py", "b2")
	assert.ErrorIs(t, err, errcodes.ErrExternalFetch)
}

func rateLimited(req *http.Request) *http.Response {
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "60")
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
	return jsonResponse(req, http.StatusForbidden, `{"message":"API rate limit exceeded"}`, h)
}

func TestRateLimitIsWaitedOutAFewTimesOnly(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		requests++
		return rateLimited(req), nil
	})

	_, err := client.GetFileContent(context.Background(), "octocat", "hello", "main.py", "b2")
	assert.ErrorIs(t, err, errcodes.ErrExternalFetch)
	assert.Equal(t, maxRateLimitRetries+1, requests)
}

func TestRateLimitResumesAfterReset(t *testing.T) {
	requests := 0
	content := base64.StdEncoding.EncodeToString([]byte("print(1)\n"))
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		requests++
		if requests == 1 {
			return rateLimited(req), nil
		}
		return jsonResponse(req, http.StatusOK, `{"type":"file","encoding":"base64","content":"`+content+`"}`, nil), nil
	})

	data, err := client.GetFileContent(context.Background(), "octocat", "hello", "main.py", "b2")
	require.NoError(t, err)
	assert.Equal(t, "print(1)\n", string(data))
	assert.Equal(t, 2, requests)
}
