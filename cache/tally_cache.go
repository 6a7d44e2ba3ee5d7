package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"online-voting-backend/models"
)

// 实时统计的缓存时间，短TTL容忍轻微滞后
const (
	tallyTTL = 5 * time.Second
	// 缓存时间抖动系数，避免同一批键同时过期
	jitterFactor = 0.2
)

// TallyCache 实时统计结果缓存。选举进行中每次投票都可能触发
// 统计查询，短TTL缓存把聚合压力从数据库挡掉一层。
type TallyCache struct{}

// NewTallyCache 创建统计缓存
func NewTallyCache() *TallyCache {
	return &TallyCache{}
}

func tallyKey(electionID uint) string {
	return fmt.Sprintf("tally:live:%d", electionID)
}

// Get 读取缓存的统计结果，未命中返回ErrCacheMiss
func (c *TallyCache) Get(ctx context.Context, electionID uint) (*models.Tally, error) {
	client, err := GetClient()
	if err != nil {
		return nil, ErrCacheMiss
	}

	data, err := client.Get(ctx, tallyKey(electionID)).Result()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var tally models.Tally
	if err := json.Unmarshal([]byte(data), &tally); err != nil {
		log.Printf("解析统计缓存失败: %v", err)
		return nil, ErrCacheMiss
	}
	return &tally, nil
}

// Set 写入统计结果，Redis不可用时静默跳过
func (c *TallyCache) Set(ctx context.Context, tally *models.Tally) {
	client, err := GetClient()
	if err != nil {
		return
	}

	data, err := json.Marshal(tally)
	if err != nil {
		log.Printf("序列化统计结果失败: %v", err)
		return
	}

	if err := client.Set(ctx, tallyKey(tally.ElectionID), data, jitterTTL(tallyTTL)).Err(); err != nil {
		log.Printf("写入统计缓存失败: %v", err)
	}
}

// Invalidate 投票或状态转移后使缓存失效
func (c *TallyCache) Invalidate(ctx context.Context, electionID uint) {
	client, err := GetClient()
	if err != nil {
		return
	}
	if err := client.Del(ctx, tallyKey(electionID)).Err(); err != nil {
		log.Printf("清除统计缓存失败: %v", err)
	}
}

// jitterTTL 给TTL加随机抖动
func jitterTTL(ttl time.Duration) time.Duration {
	jitter := time.Duration(rand.Float64() * jitterFactor * float64(ttl))
	return ttl + jitter
}
