package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，统计下单链路的请求量与错误
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors       int64
	MQErrors       int64
	OutOfStockHits int64

	// 请求统计
	OrderRequests int64
	OrderSuccess  int64

	// 时间统计
	LastDBError   time.Time
	LastMQError   time.Time
	LastOrderTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordOrderRequest 记录一次下单请求
func (m *Monitor) RecordOrderRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderRequests++
	m.LastOrderTime = time.Now()
}

// RecordOrderSuccess 记录下单成功
func (m *Monitor) RecordOrderSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderSuccess++
}

// RecordOutOfStock 记录库存不足拒单
func (m *Monitor) RecordOutOfStock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutOfStockHits++
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.OrderRequests > 0 {
		successRate = float64(m.OrderSuccess) / float64(m.OrderRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":           m.DBErrors,
			"mq":           m.MQErrors,
			"out_of_stock": m.OutOfStockHits,
		},
		"orders": map[string]interface{}{
			"requests":     m.OrderRequests,
			"success":      m.OrderSuccess,
			"success_rate": successRate,
		},
		"last_events": map[string]interface{}{
			"db_error":   m.LastDBError,
			"mq_error":   m.LastMQError,
			"last_order": m.LastOrderTime,
		},
	}
}

// Reset 重置统计（测试用）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors = 0
	m.MQErrors = 0
	m.OutOfStockHits = 0
	m.OrderRequests = 0
	m.OrderSuccess = 0
	m.LastDBError = time.Time{}
	m.LastMQError = time.Time{}
	m.LastOrderTime = time.Time{}
}
