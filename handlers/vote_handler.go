package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"online-voting-backend/cache"
	"online-voting-backend/models"
	"online-voting-backend/service"
	"online-voting-backend/websocket"
)

// VoteHandler 投票API
type VoteHandler struct {
	votes      *service.VoteService
	tally      *service.TallyService
	tallyCache *cache.TallyCache
	wsHub      *websocket.Hub
}

// NewVoteHandler 创建投票处理器
func NewVoteHandler(votes *service.VoteService, tally *service.TallyService, tallyCache *cache.TallyCache, wsHub *websocket.Hub) *VoteHandler {
	return &VoteHandler{
		votes:      votes,
		tally:      tally,
		tallyCache: tallyCache,
		wsHub:      wsHub,
	}
}

// CastVoteInput 投票请求
type CastVoteInput struct {
	CandidateID uint `json:"candidate_id" binding:"required"`
}

// CastVote 投出一票
func (h *VoteHandler) CastVote(c *gin.Context) {
	voterID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return
	}

	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.votes.CastVote(c.Request.Context(), voterID, electionID, input.CandidateID)
	if err != nil {
		respondError(c, err)
		return
	}

	// 票已落库，使缓存失效并异步推送最新实时统计
	h.tallyCache.Invalidate(c.Request.Context(), electionID)
	go h.broadcastLiveTally(electionID)

	c.JSON(http.StatusCreated, vote)
}

// broadcastLiveTally 计算并广播实时统计
func (h *VoteHandler) broadcastLiveTally(electionID uint) {
	ctx := context.Background()
	tally, err := h.tally.ComputeLive(ctx, electionID)
	if err != nil {
		log.Printf("计算实时统计失败: %v", err)
		return
	}

	h.tallyCache.Set(ctx, tally)
	h.wsHub.BroadcastToElection(electionID, &models.WebSocketMessage{
		Type:       "VOTE_UPDATE",
		ElectionID: electionID,
		Payload:    tally,
	})
}

// VoteStatus 查询当前用户是否已投票
func (h *VoteHandler) VoteStatus(c *gin.Context) {
	voterID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return
	}

	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	hasVoted, err := h.votes.HasVoted(c.Request.Context(), voterID, electionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_voted": hasVoted})
}

// Turnout 查询选举的投票人数
func (h *VoteHandler) Turnout(c *gin.Context) {
	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	count, err := h.tally.VoterTurnout(c.Request.Context(), electionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voter_count": count})
}
