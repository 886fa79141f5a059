package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

func newTestClient(url string) *Client {
	return NewClient(config.SolverConfig{URL: url, Timeout: 2 * time.Second}, zap.NewNop())
}

func TestClientSolveDecodesResult(t *testing.T) {
	var received dto.SolveInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lessons":[{"subjectId":1,"teacherId":2,"groupId":3,"roomId":4,"timeslotId":5}],"objectiveScore":12,"notes":["ok"]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Solve(context.Background(), &dto.SolveInput{Term: "2025-T1"})
	require.NoError(t, err)

	placements, ok := result.Placements()
	require.True(t, ok)
	require.Len(t, placements, 1)
	assert.Equal(t, int64(4), placements[0].RoomID)
	require.NotNil(t, result.ObjectiveScore)
	assert.Equal(t, 12, *result.ObjectiveScore)
	assert.Equal(t, []string{"ok"}, result.Notes)
	assert.Equal(t, "2025-T1", received.Term)
}

func TestClientSolveNonListLessons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lessons":"nope","notes":["infeasible"]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Solve(context.Background(), &dto.SolveInput{})
	require.NoError(t, err)

	_, ok := result.Placements()
	assert.False(t, ok)
	assert.Equal(t, []string{"infeasible"}, result.Notes)
}

func TestClientSolveErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Solve(context.Background(), &dto.SolveInput{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSolverUnavailable.Code, appErr.Code)
	assert.Contains(t, appErr.Err.Error(), "solver status 500")
}

func TestClientSolveTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(config.SolverConfig{URL: server.URL, Timeout: 50 * time.Millisecond}, zap.NewNop())
	_, err := client.Solve(context.Background(), &dto.SolveInput{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSolverUnavailable.Code, appErrors.FromError(err).Code)
}

func TestClientSolveConnectionRefused(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1/solve")
	_, err := client.Solve(context.Background(), &dto.SolveInput{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSolverUnavailable.Code, appErr.Code)
}
