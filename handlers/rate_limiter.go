package handlers

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 限流配置，可通过环境变量覆盖
var (
	rateLimitEnabled = true
	voterRate        = rate.Limit(5) // 每个投票人每秒请求数
	voterBurst       = 10
)

// voterLimiter 按投票人ID分配的令牌桶，闲置的定期清理
type voterLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	voterLimiters = make(map[string]*voterLimiter)
	limiterMu     sync.Mutex
)

// InitRateLimiters 初始化限流器配置
func InitRateLimiters() {
	if os.Getenv("ENABLE_RATE_LIMIT") == "false" {
		rateLimitEnabled = false
		log.Println("限流已禁用")
		return
	}

	if rateStr := os.Getenv("VOTER_RATE_LIMIT"); rateStr != "" {
		if r, err := strconv.Atoi(rateStr); err == nil && r > 0 {
			voterRate = rate.Limit(r)
			voterBurst = r * 2
		}
	}

	// 定期清理超过3分钟未出现的限流器
	go func() {
		for {
			time.Sleep(time.Minute)
			limiterMu.Lock()
			for key, v := range voterLimiters {
				if time.Since(v.lastSeen) > 3*time.Minute {
					delete(voterLimiters, key)
				}
			}
			limiterMu.Unlock()
		}
	}()

	log.Printf("限流器已初始化：每投票人 %v/秒，突发 %d", voterRate, voterBurst)
}

// getVoterLimiter 获取或创建某个key的限流器
func getVoterLimiter(key string) *rate.Limiter {
	limiterMu.Lock()
	defer limiterMu.Unlock()

	v, ok := voterLimiters[key]
	if !ok {
		v = &voterLimiter{limiter: rate.NewLimiter(voterRate, voterBurst)}
		voterLimiters[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// RateLimitMiddleware 按调用方身份限流，没有身份时按客户端IP
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitEnabled {
			c.Next()
			return
		}

		key := c.GetHeader("X-User-ID")
		if key == "" {
			key = c.ClientIP()
		}

		if !getVoterLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
