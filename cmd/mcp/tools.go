package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"feedback-ai/cmd/api/dto"
	"feedback-ai/services"
)

// feedbackTools 는 HTTP API 와 같은 서비스를 MCP 도구로 노출한다.
type feedbackTools struct {
	submission *services.SubmissionService
	admin      *services.AdminService
	validate   *validator.Validate
}

func newFeedbackTools(submission *services.SubmissionService, admin *services.AdminService) *feedbackTools {
	// HTTP 바인딩과 동일한 규칙을 쓰도록 binding 태그를 읽는다.
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return &feedbackTools{submission: submission, admin: admin, validate: v}
}

func (t *feedbackTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("submit_feedback",
		mcp.WithDescription("Submit a star rating and review. The review is analyzed by the AI model and stored; returns the status and the reply shown to the user."),
		mcp.WithNumber("rating",
			mcp.Required(),
			mcp.Min(1),
			mcp.Max(5),
			mcp.Description("Star rating, an integer from 1 to 5"),
		),
		mcp.WithString("review_text",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.MaxLength(2000),
			mcp.Description("Free-text review, 1 to 2000 characters"),
		),
	), t.submitFeedback)

	s.AddTool(mcp.NewTool("list_feedback",
		mcp.WithDescription("List every stored feedback record with its AI summary and recommended actions, newest first."),
	), t.listFeedback)
}

func (t *feedbackTools) submitFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rating, err := request.RequireFloat("rating")
	if err != nil {
		return mcp.NewToolResultError("rating is required"), nil
	}
	if rating != math.Trunc(rating) {
		return mcp.NewToolResultError("rating must be an integer"), nil
	}
	reviewText, err := request.RequireString("review_text")
	if err != nil {
		return mcp.NewToolResultError("review_text is required"), nil
	}

	req := dto.SubmitFeedbackRequestDTO{Rating: int(rating), ReviewText: reviewText}
	if err := t.validate.Struct(req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid_request: %v", err)), nil
	}

	result, err := t.submission.Submit(ctx, services.SubmitInput{Rating: req.Rating, ReviewText: req.ReviewText})
	if err != nil {
		if errors.Is(err, services.ErrStorageFailure) {
			return mcp.NewToolResultError("storage_failure"), nil
		}
		return nil, err
	}

	return jsonResult(dto.SubmitFeedbackResponseDTO{
		Status:         result.Status,
		AIUserResponse: result.AIUserResponse,
	})
}

func (t *feedbackTools) listFeedback(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := t.admin.ListAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("storage_failure: %v", err)), nil
	}
	out := make([]dto.AdminFeedbackDTO, 0, len(items))
	for _, rec := range items {
		out = append(out, dto.NewAdminFeedbackDTO(rec))
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
