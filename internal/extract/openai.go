package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o"
)

// OpenAIConfig holds configuration for the OpenAI-backed extraction client.
type OpenAIConfig struct {
	APIKey     string
	Model      string        // "gpt-4o" (default) or any vision-capable model
	Timeout    time.Duration // HTTP timeout (default 120s)
	BaseURL    string        // Optional: OpenAI-compatible deployments and tests
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIClient implements Extractor using the official OpenAI SDK.
// SDK-level retries are disabled: a failed extraction surfaces to the
// caller, who decides whether to resubmit the record.
type OpenAIClient struct {
	model  string
	client openai.Client
}

// NewOpenAIClient creates a new extraction client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// HealthCheck verifies the API is reachable and the key is valid.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("extraction service health check failed: %w", mapAPIError(err))
	}
	if page == nil {
		return fmt.Errorf("extraction service health check returned nil response")
	}
	return nil
}

// Extract sends one document to the model and parses the structured answer.
func (c *OpenAIClient) Extract(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || len(req.Payload) == 0 {
		return nil, fmt.Errorf("request payload is required")
	}

	part, err := payloadPart(req)
	if err != nil {
		return nil, err
	}

	var schema map[string]any
	if err := json.Unmarshal(ResponseSchemaJSON(), &schema); err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(1024),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				part,
				openai.TextContentPart(UserPrompt),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "classify_response",
					Schema: schema,
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ServiceError{Category: ErrorOther, Message: "empty choices in extraction response"}
	}

	result, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &ServiceError{Category: ErrorOther, Message: err.Error()}
	}
	return result, nil
}

// payloadPart builds the document content part: PDFs travel as file parts,
// everything else as an inline image.
func payloadPart(req *Request) (openai.ChatCompletionContentPartUnionParam, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MediaType, base64.StdEncoding.EncodeToString(req.Payload))

	switch req.MediaType {
	case "application/pdf":
		return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(dataURL),
			Filename: openai.String(req.FileName),
		}), nil
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}), nil
	default:
		return openai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("unsupported media type %q", req.MediaType)
	}
}

var _ Extractor = (*OpenAIClient)(nil)
