package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"stockpick/config"
	"stockpick/fetcher"
	"stockpick/model"
	"stockpick/trading"
)

// 单次请求允许的最大 top
const maxTopN = 20

// Recommender 执行一次完整推荐
type Recommender interface {
	Recommend(ctx context.Context, q fetcher.Query, topN int) (*model.Recommendation, error)
}

// Handler API处理器
type Handler struct {
	rec     Recommender
	cfg     *config.Config
	mu      sync.Mutex // 串行执行，避免并发运行流水线
	running atomic.Bool
	runs    atomic.Int64
}

// NewHandler 创建处理器
func NewHandler(r Recommender, cfg *config.Config) *Handler {
	return &Handler{rec: r, cfg: cfg}
}

// Recommend 运行一次选股推荐，结果不缓存
func (h *Handler) Recommend(c *gin.Context) {
	q := fetcher.Query{
		Market: strings.ToLower(strings.TrimSpace(c.DefaultQuery("market", h.cfg.Market))),
		Codes:  h.cfg.Codes,
	}
	if raw := strings.TrimSpace(c.Query("codes")); raw != "" {
		q.Codes = config.NormalizeCodes(strings.Split(raw, ","))
	} else if c.Query("market") != "" {
		q.Codes = nil
	}
	if len(q.Codes) == 0 && !config.IsValidMarket(q.Market) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "未知的市场板块",
			"market": q.Market,
		})
		return
	}

	topN := h.cfg.TopN
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTopN {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "top 必须是 1-20 之间的整数",
			})
			return
		}
		topN = n
	}

	h.mu.Lock()
	h.running.Store(true)
	rec, err := h.rec.Recommend(c.Request.Context(), q, topN)
	h.running.Store(false)
	h.runs.Add(1)
	h.mu.Unlock()

	if err != nil {
		stage := model.StageName(err)
		if stage == "" {
			stage = "pipeline"
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"stage": stage,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": rec,
	})
}

// GetStatus 获取服务状态
func (h *Handler) GetStatus(c *gin.Context) {
	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"stock_trading": trading.IsStockTradingTimeAt(now),
			"session":       trading.SessionAt(now),
			"next_open":     trading.GetNextTradingTime(now),
			"freshness":     trading.FreshnessNote(now),
			"model":         h.cfg.Model,
			"market":        h.cfg.Market,
			"top_n":         h.cfg.TopN,
			"running":       h.running.Load(),
			"runs":          h.runs.Load(),
			"server_time":   now.Format("2006-01-02 15:04:05"),
		},
	})
}
