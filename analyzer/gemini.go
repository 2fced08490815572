package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"feedback-ai/config"
	"feedback-ai/httpclient"
)

const excerptRunes = 200

// GeminiClient implements Client on top of the Gemini API.
// It is built once at process start and shared by all requests.
type GeminiClient struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	genCfg   *genai.GenerateContentConfig
	funcMode bool
}

// NewGeminiClient builds the client from explicit configuration.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model name is empty")
	}

	// The per-call deadline comes from ctx; the http client timeout is a backstop.
	httpTimeout := cfg.Timeout
	if httpTimeout > 0 {
		httpTimeout += 5 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.New(httpclient.Config{Timeout: httpTimeout}),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &GeminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if cfg.OutputMode == config.OutputModeFunctionCall {
		g.genCfg = functionCallModeConfig(cfg.Temperature)
		g.funcMode = true
	} else {
		g.genCfg = jsonModeConfig(cfg.Temperature)
	}
	return g, nil
}

func (g *GeminiClient) ModelName() string {
	return g.model
}

// Analyze performs exactly one GenerateContent call and classifies the result.
func (g *GeminiClient) Analyze(ctx context.Context, rating int, reviewText string) Outcome {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	usage := Usage{ModelName: g.model}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(buildPrompt(rating, reviewText)),
		g.genCfg,
	)
	usage.Duration = time.Since(start)
	if err != nil {
		return Failed(classifyError(err), err, usage)
	}

	fillUsage(&usage, result)
	if result == nil || len(result.Candidates) == 0 {
		reason := "no candidates"
		if result != nil && result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + string(result.PromptFeedback.BlockReason)
		}
		return Failed(InvalidResponse, fmt.Errorf("%w: %s", ErrNoStructuredPayload, reason), usage)
	}

	// primary: structured arguments from a function call
	if g.funcMode {
		for _, call := range result.FunctionCalls() {
			if call == nil || call.Name != functionName {
				continue
			}
			if a, err := decodeStructured(call.Args); err == nil {
				return Succeeded(a, usage)
			}
		}
	}

	// fallback: text extraction
	text := result.Text()
	usage.OutputExcerpt = truncate(text, excerptRunes)
	a, err := ParseAnalysisText(text)
	if err != nil {
		return Failed(InvalidResponse, err, usage)
	}
	return Succeeded(a, usage)
}

func fillUsage(usage *Usage, result *genai.GenerateContentResponse) {
	if result == nil {
		return
	}
	usage.ModelVersion = result.ModelVersion
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
