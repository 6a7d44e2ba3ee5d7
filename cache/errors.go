package cache

import "errors"

var (
	// ErrRedisNotAvailable Redis不可用错误
	ErrRedisNotAvailable = errors.New("Redis不可用")

	// ErrLockNotAcquired 获取锁失败错误
	ErrLockNotAcquired = errors.New("无法获取分布式锁")

	// ErrCacheMiss 缓存未命中
	ErrCacheMiss = errors.New("缓存未命中")
)
