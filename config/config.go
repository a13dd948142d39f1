package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockpick/model"
)

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	LLM struct {
		Token          string   `yaml:"token"`
		BaseURL        string   `yaml:"base_url"`
		Model          string   `yaml:"model"`
		Temperature    *float64 `yaml:"temperature"`
		MaxTokens      int      `yaml:"max_tokens"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Data struct {
		Market        string   `yaml:"market"`
		Codes         []string `yaml:"codes"`
		Candidates    int      `yaml:"candidates"`
		HistoryDays   int      `yaml:"history_days"`
		HistorySource string   `yaml:"history_source"`

		SinaURL             string `yaml:"sina_url"`
		EastmoneyURL        string `yaml:"eastmoney_url"`
		EastmoneyHistoryURL string `yaml:"eastmoney_history_url"`
	} `yaml:"data"`

	Scoring struct {
		ValueWeight *float64 `yaml:"value_weight"`
		TrendWeight *float64 `yaml:"trend_weight"`
		ValueCap    float64  `yaml:"value_cap"`
		TrendClip   float64  `yaml:"trend_clip"`
		Window      int      `yaml:"window"`
	} `yaml:"scoring"`

	Analysis struct {
		TopN int `yaml:"top_n"`
	} `yaml:"analysis"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Scoring 评分权重（启动时确定，运行中不再变化）
type Scoring struct {
	ValueWeight float64
	TrendWeight float64
	ValueCap    float64
	TrendClip   float64
	Window      int
}

// Config 配置
type Config struct {
	// 大模型 API Key
	APIKey string

	// OpenAI 兼容接口地址（默认 DashScope 兼容模式）
	BaseURL string

	// 模型名称
	Model string

	Temperature float64
	MaxTokens   int

	// 请求超时，0 表示沿用传输层默认值
	Timeout time.Duration

	// 市场板块: all/sh/sz/gem/star
	Market string

	// 自选股代码，非空时跳过全市场快照
	Codes []string

	// 拉取历史K线的候选数量（按总市值取前N）
	Candidates int

	// 历史K线天数
	HistoryDays int

	// 历史数据源: eastmoney/yahoo
	HistorySource string

	// 行情接口地址，留空使用默认地址（可指向代理或镜像）
	SinaURL             string
	EastmoneyURL        string
	EastmoneyHistoryURL string

	Scoring Scoring

	// 送入提示词的股票数量
	TopN int

	// HTTP 服务端口
	Port int
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	BaseURL:       "https://dashscope.aliyuncs.com/compatible-mode/v1",
	Model:         "qwen-plus",
	Temperature:   0.3,
	MaxTokens:     800,
	Market:        "all",
	Candidates:    30,
	HistoryDays:   20,
	HistorySource: "eastmoney",
	Scoring: Scoring{
		ValueWeight: 0.6,
		TrendWeight: 0.4,
		ValueCap:    50,
		TrendClip:   50,
		Window:      20,
	},
	TopN: 3,
	Port: 19527,
}

var validMarkets = map[string]bool{"all": true, "sh": true, "sz": true, "gem": true, "star": true}

// IsValidMarket 是否为支持的市场板块
func IsValidMarket(m string) bool {
	return validMarkets[m]
}

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig
	if err := config.applyFile(path); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetConfig 获取配置 (优先级: 配置文件 > 环境变量 > 默认值)
func GetConfig(configPath string) (*Config, error) {
	// .env 仅补充未设置的环境变量
	_ = godotenv.Load()

	config := DefaultConfig
	config.applyEnv()

	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}
	if configPath != "" {
		if err := config.applyFile(configPath); err != nil {
			return nil, model.NewStageError(model.ErrConfig, err)
		}
	}

	return &config, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	var y YAMLConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	if y.LLM.Token != "" {
		c.APIKey = y.LLM.Token
	}
	if y.LLM.BaseURL != "" {
		c.BaseURL = y.LLM.BaseURL
	}
	if y.LLM.Model != "" {
		c.Model = y.LLM.Model
	}
	if y.LLM.Temperature != nil {
		c.Temperature = *y.LLM.Temperature
	}
	if y.LLM.MaxTokens > 0 {
		c.MaxTokens = y.LLM.MaxTokens
	}
	if y.LLM.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(y.LLM.TimeoutSeconds) * time.Second
	}

	if y.Data.Market != "" {
		c.Market = strings.ToLower(strings.TrimSpace(y.Data.Market))
	}
	if len(y.Data.Codes) > 0 {
		c.Codes = NormalizeCodes(y.Data.Codes)
	}
	if y.Data.Candidates > 0 {
		c.Candidates = y.Data.Candidates
	}
	if y.Data.HistoryDays > 0 {
		c.HistoryDays = y.Data.HistoryDays
	}
	if y.Data.HistorySource != "" {
		c.HistorySource = strings.ToLower(strings.TrimSpace(y.Data.HistorySource))
	}

	if y.Data.SinaURL != "" {
		c.SinaURL = strings.TrimSpace(y.Data.SinaURL)
	}
	if y.Data.EastmoneyURL != "" {
		c.EastmoneyURL = strings.TrimSpace(y.Data.EastmoneyURL)
	}
	if y.Data.EastmoneyHistoryURL != "" {
		c.EastmoneyHistoryURL = strings.TrimSpace(y.Data.EastmoneyHistoryURL)
	}

	if y.Scoring.ValueWeight != nil {
		c.Scoring.ValueWeight = *y.Scoring.ValueWeight
	}
	if y.Scoring.TrendWeight != nil {
		c.Scoring.TrendWeight = *y.Scoring.TrendWeight
	}
	if y.Scoring.ValueCap > 0 {
		c.Scoring.ValueCap = y.Scoring.ValueCap
	}
	if y.Scoring.TrendClip > 0 {
		c.Scoring.TrendClip = y.Scoring.TrendClip
	}
	if y.Scoring.Window > 0 {
		c.Scoring.Window = y.Scoring.Window
	}

	if y.Analysis.TopN > 0 {
		c.TopN = y.Analysis.TopN
	}
	if y.Server.Port > 0 {
		c.Port = y.Server.Port
	}
	return nil
}

func (c *Config) applyEnv() {
	if key := getAPIKey(); key != "" {
		c.APIKey = key
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("STOCK_MARKET"); v != "" {
		c.Market = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("STOCK_CODES"); v != "" {
		c.Codes = NormalizeCodes(strings.Split(v, ","))
	}
	if v := os.Getenv("STOCK_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopN = n
		}
	}
}

// Validate 校验启动所需配置，缺少凭证属于启动失败
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return model.Stagef(model.ErrConfig, "未设置 DASHSCOPE_API_KEY（或 LLM_API_KEY / OPENAI_API_KEY）")
	}
	if !IsValidMarket(c.Market) {
		return model.Stagef(model.ErrConfig, "未知的市场板块: %s", c.Market)
	}
	if c.HistorySource != "eastmoney" && c.HistorySource != "yahoo" {
		return model.Stagef(model.ErrConfig, "未知的历史数据源: %s", c.HistorySource)
	}
	if c.TopN <= 0 {
		return model.Stagef(model.ErrConfig, "top_n 必须大于 0")
	}
	if c.Candidates <= 0 || c.HistoryDays <= 1 {
		return model.Stagef(model.ErrConfig, "candidates/history_days 配置无效")
	}
	if c.Scoring.ValueWeight < 0 || c.Scoring.TrendWeight < 0 {
		return model.Stagef(model.ErrConfig, "评分权重不能为负")
	}
	return nil
}

// getAPIKey 获取 API Key
func getAPIKey() string {
	if key := os.Getenv("DASHSCOPE_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// NormalizeCode 统一股票代码为 sh/sz/bj 前缀的小写形式
// 支持 600519 / SH600519 / 600519.SH / sz000001
func NormalizeCode(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return c
	}
	if i := strings.Index(c, "."); i > 0 {
		c = c[i+1:] + c[:i]
	}
	if strings.HasPrefix(c, "sh") || strings.HasPrefix(c, "sz") || strings.HasPrefix(c, "bj") {
		return c
	}
	if len(c) != 6 {
		return c
	}
	switch c[0] {
	case '6', '9':
		return "sh" + c
	case '4', '8':
		return "bj" + c
	default:
		return "sz" + c
	}
}

// NormalizeCodes 批量规范化并去重
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		c := NormalizeCode(code)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
