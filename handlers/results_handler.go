package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"online-voting-backend/cache"
	"online-voting-backend/service"
)

// ResultsHandler 统计结果API
type ResultsHandler struct {
	tally      *service.TallyService
	tallyCache *cache.TallyCache
}

// NewResultsHandler 创建结果处理器
func NewResultsHandler(tally *service.TallyService, tallyCache *cache.TallyCache) *ResultsHandler {
	return &ResultsHandler{tally: tally, tallyCache: tallyCache}
}

// GetResults 获取最终结果，选举仍在进行时返回403
func (h *ResultsHandler) GetResults(c *gin.Context) {
	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tally, err := h.tally.ComputeResults(c.Request.Context(), electionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// GetLive 获取实时统计，短TTL缓存挡掉高频聚合查询
func (h *ResultsHandler) GetLive(c *gin.Context) {
	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if cached, err := h.tallyCache.Get(ctx, electionID); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		respondError(c, err)
		return
	}

	tally, err := h.tally.ComputeLive(ctx, electionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.tallyCache.Set(ctx, tally)
	c.JSON(http.StatusOK, tally)
}
