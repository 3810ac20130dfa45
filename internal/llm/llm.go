package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"storysmith/internal/core"
	"storysmith/internal/logger"
)

const (
	// DefaultModel is the Gemini model used for story generation.
	DefaultModel = "gemini-2.5-flash"
	// DefaultMaxTokens bounds the length of a generated story.
	DefaultMaxTokens = int32(4000)
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
)

// Generator produces text from a prompt and optional image attachments.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments []core.Attachment) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Timeout     time.Duration
	Temperature *float32
}

// Client generates stories with Google Gemini.
type Client struct {
	modelName   string
	maxTokens   int32
	timeout     time.Duration
	temperature *float32
	gClient     *genai.Client
}

// NewClient creates a new Gemini client.
// When opts.APIKey is empty the key is read from GEMINI_API_KEY, GOOGLE_GEMINI_API_KEY or
// GOOGLE_AI_API_KEY, in that order.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := opts.APIKey
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY"} {
		if apiKey != "" {
			break
		}
		apiKey = os.Getenv(env)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		modelName:   opts.Model,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		temperature: opts.Temperature,
		gClient:     gClient,
	}
	if c.modelName == "" {
		c.modelName = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.modelName }

// Generate sends one single-turn request. With attachments the request is multimodal: every image
// part first, then the text part. Failures are returned as *GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string, attachments []core.Attachment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{BuildContent(prompt, attachments)}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
		Temperature:     c.temperature,
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", Classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Kind: KindGeneric, Detail: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return text, nil
}

// BuildContent assembles the user turn for a request. Attachments whose payload is not valid
// base64 are skipped with a warning.
func BuildContent(prompt string, attachments []core.Attachment) *genai.Content {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	for i, a := range attachments {
		if a.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			logger.Warn("Skipping attachment with invalid payload", "index", i, "name", a.Name, "error", err.Error())
			continue
		}
		mediaType := a.MediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(data, mediaType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	return genai.NewContentFromParts(parts, genai.RoleUser)
}
