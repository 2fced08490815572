package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-ai/analyzer"
	"feedback-ai/cmd/api/dto"
	"feedback-ai/db"
	"feedback-ai/repositories"
	"feedback-ai/retry"
	"feedback-ai/services"
)

func setupTools(t *testing.T, out analyzer.Outcome) (*feedbackTools, *int) {
	t.Helper()
	gdb, err := db.OpenSQL("file:mcp_" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	calls := 0
	client := analyzer.ClientFunc(func(context.Context, int, string) analyzer.Outcome {
		calls++
		return out
	})
	policy := retry.DefaultPolicy()
	policy.Sleep = func(context.Context, time.Duration) error { return nil }

	store := repositories.NewSQLFeedbackRepository(gdb)
	submission := services.NewSubmissionService(client, policy, store, services.SubmissionOptions{})
	return newFeedbackTools(submission, services.NewAdminService(store)), &calls
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSubmitFeedbackTool(t *testing.T) {
	tools, calls := setupTools(t, analyzer.Succeeded(analyzer.Analysis{
		UserReply: "Thanks a lot!",
		Summary:   "Happy user",
		Actions:   []string{"Share with team"},
	}, analyzer.Usage{}))

	res, err := tools.submitFeedback(context.Background(), callRequest("submit_feedback", map[string]any{
		"rating":      float64(5),
		"review_text": "Love the new release",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 1, *calls)

	var out dto.SubmitFeedbackResponseDTO
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "Thanks a lot!", out.AIUserResponse)

	res, err = tools.listFeedback(context.Background(), callRequest("list_feedback", nil))
	require.NoError(t, err)

	var rows []dto.AdminFeedbackDTO
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Happy user", rows[0].AISummary)
	assert.Equal(t, []string{"Share with team"}, rows[0].AIActions)
}

func TestSubmitFeedbackToolRejectsInvalidInput(t *testing.T) {
	tools, calls := setupTools(t, analyzer.Succeeded(analyzer.Analysis{}, analyzer.Usage{}))

	cases := map[string]map[string]any{
		"missing rating":  {"review_text": "ok"},
		"fractional":      {"rating": 2.5, "review_text": "ok"},
		"out of range":    {"rating": float64(9), "review_text": "ok"},
		"missing review":  {"rating": float64(3)},
		"empty review":    {"rating": float64(3), "review_text": ""},
		"review too long": {"rating": float64(3), "review_text": strings.Repeat("x", 2001)},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := tools.submitFeedback(context.Background(), callRequest("submit_feedback", args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
	assert.Zero(t, *calls)
}

func TestSubmitFeedbackToolAcceptsWhitespaceReview(t *testing.T) {
	tools, calls := setupTools(t, analyzer.Succeeded(analyzer.Analysis{UserReply: "Thanks!"}, analyzer.Usage{}))

	res, err := tools.submitFeedback(context.Background(), callRequest("submit_feedback", map[string]any{
		"rating":      float64(3),
		"review_text": "  ",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))
	assert.Equal(t, 1, *calls)

	res, err = tools.listFeedback(context.Background(), callRequest("list_feedback", nil))
	require.NoError(t, err)
	var rows []dto.AdminFeedbackDTO
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "  ", rows[0].ReviewText)
}

func TestListFeedbackToolEmpty(t *testing.T) {
	tools, _ := setupTools(t, analyzer.Outcome{})

	res, err := tools.listFeedback(context.Background(), callRequest("list_feedback", nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
}
