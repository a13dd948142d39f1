package stockctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stockpick/analyzer"
	"stockpick/api"
	"stockpick/config"
	"stockpick/fetcher"
	"stockpick/internal/terminalui"
	"stockpick/llm"
	"stockpick/model"
	"stockpick/report"
	"stockpick/scorer"
)

// Version 构建时通过 -ldflags "-X stockpick/internal/stockctl.Version=..." 注入
var Version = "dev"

// 终端排名表最多显示的行数
const tableRows = 20

// usageError 参数错误，退出码 2
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

// reportError 结果已输出，但报告文件写入失败
type reportError struct{ err error }

func (e reportError) Error() string { return e.err.Error() }

type options struct {
	configPath    string
	market        string
	codes         string
	candidates    int
	top           int
	historyDays   int
	historySource string
	model         string
	baseURL       string
	out           string
	html          string
	json          bool
	serve         bool
	port          int
	quiet         bool
}

// Run 命令入口，返回进程退出码
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	cmd := newRootCmd(&opts, stdout, stderr)
	cmd.SetArgs(normalizeArgs(args))

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "[ERROR] usage: %v\n", ue.err)
		fmt.Fprintln(stderr, cmd.UsageString())
		return 2
	}

	var re reportError
	stage := model.StageName(err)
	switch {
	case errors.As(err, &re):
		stage = "report"
	case stage == "":
		stage = "pipeline"
	}
	fmt.Fprintf(stderr, "[ERROR] %s: %v\n", stage, err)
	return 1
}

func newRootCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "A股多因子选股 + 大模型点评",
		Long: `拉取A股行情与估值数据，按估值和趋势打分排序，
将排名靠前的股票交给大模型生成分析与组合建议。`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("不支持的参数: %s", strings.Join(args, " "))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")
	f.StringVar(&opts.market, "market", "", "市场板块: all/sh/sz/gem/star")
	f.StringVar(&opts.codes, "codes", "", "自选股代码，逗号分隔（如 600519,000001），设置后忽略 -market")
	f.IntVar(&opts.candidates, "candidates", 0, "按总市值取前 N 只拉取历史K线")
	f.IntVar(&opts.top, "top", 0, "送入大模型的股票数量")
	f.IntVar(&opts.historyDays, "history-days", 0, "历史K线天数")
	f.StringVar(&opts.historySource, "history-source", "", "历史数据源: eastmoney/yahoo")
	f.StringVar(&opts.model, "model", "", "模型名称（默认 qwen-plus）")
	f.StringVar(&opts.baseURL, "base-url", "", "OpenAI 兼容接口地址")
	f.StringVar(&opts.out, "out", "", "JSON 报告输出路径")
	f.StringVar(&opts.html, "html", "", "HTML 报告输出路径")
	f.BoolVar(&opts.json, "json", false, "以 JSON 输出结果（默认表格）")
	f.BoolVar(&opts.serve, "serve", false, "启动 HTTP 服务，每次请求运行一次推荐")
	f.IntVar(&opts.port, "port", 0, "HTTP 服务端口（配合 -serve）")
	f.BoolVar(&opts.quiet, "quiet", false, "不输出进度日志")

	return cmd
}

func execute(cmd *cobra.Command, opts *options, stdout io.Writer) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(cmd.ErrOrStderr())
	if opts.quiet {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.GetConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	if opts.serve {
		return serve(pipeline, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := pipeline.Run(ctx, fetcher.Query{Market: cfg.Market, Codes: cfg.Codes})
	if err != nil {
		return err
	}

	if opts.json {
		b, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化结果失败: %w", err)
		}
		if _, err := fmt.Fprintln(stdout, string(b)); err != nil {
			return err
		}
	} else {
		terminalui.Render(stdout, rec, tableRows, report.Disclaimer)
	}

	// 结果先于报告输出
	if err := report.WriteJSON(opts.out, rec); err != nil {
		return reportError{fmt.Errorf("写入 JSON 报告失败: %w", err)}
	}
	if err := report.WriteHTML(opts.html, rec); err != nil {
		return reportError{fmt.Errorf("写入 HTML 报告失败: %w", err)}
	}
	return nil
}

// applyFlags 命令行参数覆盖配置文件与环境变量，仅处理显式设置的参数
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("market") {
		cfg.Market = strings.ToLower(strings.TrimSpace(opts.market))
		cfg.Codes = nil
	}
	if f.Changed("codes") {
		cfg.Codes = config.NormalizeCodes(strings.Split(opts.codes, ","))
	}
	if f.Changed("candidates") {
		cfg.Candidates = opts.candidates
	}
	if f.Changed("top") {
		cfg.TopN = opts.top
	}
	if f.Changed("history-days") {
		cfg.HistoryDays = opts.historyDays
	}
	if f.Changed("history-source") {
		cfg.HistorySource = strings.ToLower(strings.TrimSpace(opts.historySource))
	}
	if f.Changed("model") {
		cfg.Model = opts.model
	}
	if f.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if f.Changed("port") {
		cfg.Port = opts.port
	}
}

func buildPipeline(cfg *config.Config) (*analyzer.Pipeline, error) {
	ep := fetcher.Endpoints{
		Sina:             cfg.SinaURL,
		Eastmoney:        cfg.EastmoneyURL,
		EastmoneyHistory: cfg.EastmoneyHistoryURL,
	}
	history, err := fetcher.NewHistorySource(cfg.HistorySource, ep)
	if err != nil {
		return nil, model.NewStageError(model.ErrConfig, err)
	}
	client, err := llm.NewClient(llm.Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[AI] 模型 %s @ %s", client.Model(), client.Endpoint())

	return analyzer.NewPipeline(
		fetcher.NewRetriever(cfg.Candidates, cfg.HistoryDays, history, ep),
		scorer.New(cfg.Scoring),
		analyzer.New(client, cfg.TopN),
		analyzer.Weights{
			ValueWeight: cfg.Scoring.ValueWeight,
			TrendWeight: cfg.Scoring.TrendWeight,
			Window:      cfg.Scoring.Window,
		},
	), nil
}

func serve(p *analyzer.Pipeline, cfg *config.Config) error {
	server := api.NewServer(api.NewHandler(p, cfg), cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP服务启动失败: %w", err)
		}
		return nil
	case <-sigChan:
	}

	log.Println("正在关闭服务...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	log.Println("服务已关闭")
	return nil
}

// normalizeArgs 兼容单横线长参数: -config x -> --config x
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) > 2 && a[0] == '-' && a[1] != '-' {
			name := strings.SplitN(a[1:], "=", 2)[0]
			if len(name) > 1 {
				a = "-" + a
			}
		}
		out = append(out, a)
	}
	return out
}
