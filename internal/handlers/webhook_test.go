package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *handlerTestEnv) deliver(t *testing.T, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/webhooks/github/%d", env.board.ID),
		bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_PROpenedFiresRules(t *testing.T) {
	env := setupHandlerTestEnv(t)
	rule := models.AutomationRule{
		OrganizationID: env.org.ID,
		Name:           "review opened PRs",
		Enabled:        true,
		Trigger:        models.TriggerPROpened,
		Action:         models.ActionCreateTask,
		Params: map[string]string{
			"title":  "Review PR #{{pr.number}}: {{pr.title}}",
			"column": "review",
		},
	}
	require.NoError(t, env.ruleRepo.Create(&rule))

	w := env.deliver(t, `{
		"action": "opened",
		"pull_request": {
			"number": 42,
			"title": "Fix login bug",
			"body": "",
			"html_url": "https://github.com/acme/repo/pull/42",
			"state": "open",
			"user": {"login": "octocat"}
		}
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["rules_fired"])

	var task models.Task
	require.NoError(t, env.db.Where("title = ?", "Review PR #42: Fix login bug").First(&task).Error)
}

func TestWebhookHandler_UnsupportedActionAcknowledged(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.deliver(t, `{
		"action": "labeled",
		"pull_request": {"number": 1, "user": {"login": "x"}}
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ignored"])
}

func TestWebhookHandler_MalformedPayloadRejected(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.deliver(t, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_UnknownBoard(t *testing.T) {
	env := setupHandlerTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github/9999",
		bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The error envelope echoes the request id so the delivery can be
	// matched against server logs.
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, w.Header().Get("X-Request-ID"), resp["request_id"])
	assert.NotEmpty(t, resp["request_id"])
}
