package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockpick/model"
)

const defaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Options 大模型客户端参数
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // 0 表示不设置，沿用传输层默认值
}

// Client OpenAI 兼容的 chat/completions 客户端
type Client struct {
	http        *resty.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// NewClient 创建客户端
func NewClient(opts Options) (*Client, error) {
	endpoint, err := completionsEndpoint(opts.BaseURL)
	if err != nil {
		return nil, model.NewStageError(model.ErrConfig, err)
	}

	http := resty.New()
	if opts.Timeout > 0 {
		http.SetTimeout(opts.Timeout)
	}

	return &Client{
		http:        http,
		endpoint:    endpoint,
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       strings.TrimSpace(opts.Model),
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

// Model 当前模型名称
func (c *Client) Model() string {
	return c.model
}

// Endpoint 完整请求地址
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Complete 发送提示词并返回原始响应体，不重试
func (c *Client) Complete(ctx context.Context, prompt PromptPayload) ([]byte, error) {
	if c.apiKey == "" {
		return nil, model.Stagef(model.ErrLLMCall, "未配置 API Key")
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemStockPicker()},
			{Role: "user", Content: string(prompt)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return nil, model.NewStageError(model.ErrLLMCall, fmt.Errorf("请求失败: %w", err))
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, model.Stagef(model.ErrLLMCall, "http %d: %s", resp.StatusCode(), truncate(strings.TrimSpace(resp.String()), 300))
	}
	return resp.Body(), nil
}

// completionsEndpoint 补全 chat/completions 路径
func completionsEndpoint(baseURL string) (string, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	lower := strings.ToLower(trimmed)

	endpoint := trimmed
	switch {
	case strings.HasSuffix(lower, "/chat/completions"):
	case strings.HasSuffix(lower, "/v1"):
		endpoint = trimmed + "/chat/completions"
	default:
		endpoint = trimmed + "/v1/chat/completions"
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("base_url 无效: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base_url 协议无效: %s", parsed.Scheme)
	}
	return endpoint, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
