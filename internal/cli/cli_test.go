package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/emergency-console/internal/domain"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LOGGER_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func withBackend(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("BACKEND_BASE_URL", srv.URL)
}

func TestSnapshotReady(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_calls": 4, "calls_by_category": {"policia": 2, "trote": 2}, "average_confidence": 0.5, "last_calls": []}`))
	})

	out, err := runCmd(t, "snapshot")
	require.NoError(t, err)

	var screen domain.Screen
	require.NoError(t, json.Unmarshal([]byte(out), &screen))
	assert.Equal(t, domain.ScreenReady, screen.Mode)
	assert.Equal(t, domain.BadgeOnline, screen.Badge)
	require.NotNil(t, screen.View)
	assert.Equal(t, int64(2), screen.View.Headline.PrankCalls)
	assert.Equal(t, 50, screen.View.Categories[0].Rounded)
}

func TestSnapshotBackendDown(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	out, err := runCmd(t, "snapshot")
	require.NoError(t, err)

	var screen domain.Screen
	require.NoError(t, json.Unmarshal([]byte(out), &screen))
	assert.Equal(t, domain.ScreenError, screen.Mode)
	assert.True(t, screen.RetryAvailable)
	assert.Nil(t, screen.View)
}

func TestHistoryCommand(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id": "x1", "category": "samu"}, {"id": "x2", "category": "trote"}]`))
	})

	out, err := runCmd(t, "history", "--limit", "2")
	require.NoError(t, err)

	var calls []domain.ClassifiedCall
	require.NoError(t, json.Unmarshal([]byte(out), &calls))
	assert.Len(t, calls, 2)
}

func TestClassifyCommandWithMock(t *testing.T) {
	out, err := runCmd(t, "--mock", "classify", "tem", "fogo", "aqui")
	require.NoError(t, err)

	var resp domain.ClassificationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Category.Valid())
}

func TestClassifyCommandRequiresText(t *testing.T) {
	_, err := runCmd(t, "--mock", "classify")
	assert.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("POLLER_INTERVAL", "1s")
	t.Setenv("BACKEND_REQUEST_TIMEOUT", "2s")

	_, err := runCmd(t, "snapshot")
	assert.ErrorContains(t, err, "load config")
}
