package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"online-voting-backend/models"
)

// Client 代表一个WebSocket连接客户端
type Client struct {
	// 订阅的选举ID
	ElectionID uint

	// WebSocket连接
	conn *websocket.Conn

	// 消息发送通道
	send chan []byte
}

// Hub 维护活跃的客户端集合并向客户端广播实时统计
type Hub struct {
	// 已注册的客户端，按选举ID分组
	clients map[uint]map[*Client]bool

	// 注册请求
	register chan *Client

	// 注销请求
	unregister chan *Client

	// 互斥锁保护clients map
	mu sync.RWMutex
}

// NewHub 创建一个新的Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 启动Hub消息处理循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.ElectionID]; !ok {
				h.clients[client.ElectionID] = make(map[*Client]bool)
			}
			h.clients[client.ElectionID][client] = true
			total := len(h.clients[client.ElectionID])
			h.mu.Unlock()
			log.Printf("Client registered for election %d, total clients: %d", client.ElectionID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ElectionID]; ok {
				if _, ok := h.clients[client.ElectionID][client]; ok {
					delete(h.clients[client.ElectionID], client)
					close(client.send)
					if len(h.clients[client.ElectionID]) == 0 {
						delete(h.clients, client.ElectionID)
					}
					h.mu.Unlock()
					log.Printf("Client unregistered for election %d", client.ElectionID)
					continue
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToElection 向订阅某选举的所有客户端广播消息
func (h *Hub) BroadcastToElection(electionID uint, message *models.WebSocketMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error converting message to JSON: %v", err)
		return
	}

	// Run的register分支会并发修改内部map，只能在读锁内
	// 先拷贝出客户端快照再发送
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[electionID]))
	for client := range h.clients[electionID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- payload:
		default:
			// 发送缓冲区已满的客户端走统一的注销流程，
			// 重复注销同一客户端由Run里的存在性检查兜住
			h.unregister <- client
		}
	}
}

// RegisterClient 注册客户端到Hub
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient 从Hub中注销客户端
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
