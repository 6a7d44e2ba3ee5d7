package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"online-voting-backend/service"
	"online-voting-backend/sweeper"
)

// ElectionHandler 选举管理API
type ElectionHandler struct {
	elections *service.ElectionService
	sweeper   *sweeper.Sweeper
}

// NewElectionHandler 创建选举处理器
func NewElectionHandler(elections *service.ElectionService, sw *sweeper.Sweeper) *ElectionHandler {
	return &ElectionHandler{elections: elections, sweeper: sw}
}

// Create 创建选举
func (h *ElectionHandler) Create(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return
	}

	var input service.CreateElectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	election, err := h.elections.Create(c.Request.Context(), creatorID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, election)
}

// List 获取全部选举
func (h *ElectionHandler) List(c *gin.Context) {
	elections, err := h.elections.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, elections)
}

// Get 获取单个选举
func (h *ElectionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, err := h.elections.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// Update 修改pending选举的标题和时间安排
func (h *ElectionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input service.CreateElectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	election, err := h.elections.UpdateSchedule(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// Delete 删除选举
func (h *ElectionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.elections.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "election deleted"})
}

// Close 管理员手动关闭选举
func (h *ElectionHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, err := h.elections.Close(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// AddCandidateInput 添加候选人请求
type AddCandidateInput struct {
	CandidateIDs []uint `json:"candidate_ids" binding:"required,min=1"`
}

// AddCandidates 向选举添加候选人
func (h *ElectionHandler) AddCandidates(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input AddCandidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	election, err := h.elections.AddCandidates(c.Request.Context(), id, input.CandidateIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// RemoveCandidate 从选举移除候选人
func (h *ElectionHandler) RemoveCandidate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	candidateID, ok := pathID(c, "candidateId")
	if !ok {
		return
	}

	if err := h.elections.RemoveCandidate(c.Request.Context(), id, candidateID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "candidate removed"})
}

// Sweep 手动触发一轮状态扫描，返回每个选举的转移结果
func (h *ElectionHandler) Sweep(c *gin.Context) {
	outcomes := h.sweeper.RunOnce(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}
