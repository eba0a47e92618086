package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"resume-converter/internal/llm"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. A missing API key is not fatal
// here; calls fail with llm.ErrMissingCredentials so the pipeline can report
// the configuration problem at the stage where it matters.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
	File     *filePart     `json:"file,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// StructureResume asks the model to convert resume text into the profile
// JSON shape. The raw content string is returned without parsing.
func (c *Client) StructureResume(ctx context.Context, input llm.StructureInput) (string, error) {
	developer := strings.NewReplacer(
		"{{CANDIDATE_NAME}}", input.CandidateName,
		"{{NATIONALITY}}", input.Nationality,
		"{{GENDER}}", input.Gender,
		"{{EXPECTED_SALARY}}", input.ExpectedSalary,
		"{{NOTICE_PERIOD}}", input.NoticePeriod,
	).Replace(llm.StructurePrompt())

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a resume structuring engine. Respond with JSON only."},
			{Role: "developer", Content: developer},
			{Role: "user", Content: "Resume text:\n\n" + input.ResumeText},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	temp := float32(0)
	req.Temperature = &temp

	return c.complete(ctx, req)
}

// TranscribeDocument submits the document to the vision model as an inline
// data URL and returns the transcription verbatim.
func (c *Client) TranscribeDocument(ctx context.Context, data []byte, mimeType string) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	dataURL := "data:" + mimeType + ";base64," + encoded

	parts := []contentPart{{Type: "text", Text: llm.TranscribePrompt()}}
	if strings.HasPrefix(mimeType, "image/") {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURLPart{URL: dataURL}})
	} else {
		parts = append(parts, contentPart{Type: "file", File: &filePart{Filename: "resume.pdf", FileData: dataURL}})
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: parts},
		},
	}

	return c.complete(ctx, req)
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", llm.ErrMissingCredentials)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%w: request timeout: %v", llm.ErrService, err)
		}
		return "", fmt.Errorf("%w: %v", llm.ErrService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", llm.ErrService, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: response parse: %v", llm.ErrService, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s (%s)", llm.ErrService, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", llm.ErrService, resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response missing choices", llm.ErrService)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: response empty content", llm.ErrService)
	}
	if parsed.Usage != nil {
		logUsage(c.model, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, parsed.Usage.TotalTokens)
	}
	return content, nil
}

var _ llm.Client = (*Client)(nil)
