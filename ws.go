package thinky_sdk

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小（上行只有心跳/状态包，给小一点）
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

// Client ws和hub的连接
// 说明：Client 代表“某个具体 websocket 连接”，设备级别可复用的数据放到 DeviceSession。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// DeviceID 和设备指纹关联
	DeviceID string

	// 会话ID
	SessionID string

	// DeviceSession 指向设备级别共享状态（昵称/当前页面/打开中的会话等）
	session *DeviceSession

	// Username 匿名昵称
	Username string
}

// DeviceSession 设备级别共享状态（同一设备多 tab/多连接复用）。
// CurrentPage 和 OpenPeer 是通知抑制规则的输入：
// 停在社区页就不弹社区通知，开着某个私信会话就不弹该会话的通知。
type DeviceSession struct {
	DeviceID string
	Username string

	mu          sync.Mutex
	currentPage string
	openPeer    string // 打开中的私信对端 device_id（空 = 没开）

	lastSeen time.Time
}

// SetPage 更新当前页面
func (s *DeviceSession) SetPage(page string) {
	s.mu.Lock()
	s.currentPage = page
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// SetOpenPeer 更新打开中的私信会话（空串表示关闭）
func (s *DeviceSession) SetOpenPeer(peer string) {
	s.mu.Lock()
	s.openPeer = peer
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Snapshot 读取当前页面与打开中的会话
func (s *DeviceSession) Snapshot() (page, openPeer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage, s.openPeer
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, message)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// 一次性发送管道剩余全部的消息，不重新走message, ok := <-c.send，提升性能
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump 写入ping失败")
				return
			}
		}
	}
}

type WsServer struct {
	clients map[*Client]bool
	// 设备ID -> 该设备所有活跃的Websocket连接（支持多 tab）
	deviceClients map[string][]*Client

	// 设备级别共享 session
	Sessions map[string]*DeviceSession

	// 设备ID -> “延迟清理” 的定时器
	gcTimers map[string]*time.Timer

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// 回调处理上行消息
	onMessage func(client *Client, msg []byte)

	// onSessionExpired 设备断连且 GC 宽限期内未重连时触发
	// （engine 注入：清弹窗队列 + 尽力删除 presence 行）
	onSessionExpired func(deviceID string)
}

func NewWsServer() *WsServer {
	return &WsServer{
		broadcast:     make(chan []byte),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		deviceClients: make(map[string][]*Client),
		Sessions:      make(map[string]*DeviceSession),
		gcTimers:      make(map[string]*time.Timer),
	}
}

// sessionGCGrace 断开后保留 session 的宽限期（给断开-重连留窗口）
const sessionGCGrace = time.Minute

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// 1) 复用/创建设备级 session
			sess := h.Sessions[client.DeviceID]
			if sess == nil {
				sess = &DeviceSession{DeviceID: client.DeviceID, Username: client.Username, lastSeen: time.Now()}
				h.Sessions[client.DeviceID] = sess
			} else {
				// 更新昵称（以最新连接为准）
				sess.Username = client.Username
				sess.mu.Lock()
				sess.lastSeen = time.Now()
				sess.mu.Unlock()
			}
			client.session = sess

			// 2) 取消 GC 定时器（设备又上线了）
			if t, ok := h.gcTimers[client.DeviceID]; ok {
				t.Stop()
				delete(h.gcTimers, client.DeviceID)
			}

			h.clients[client] = true
			h.deviceClients[client.DeviceID] = append(h.deviceClients[client.DeviceID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if conns, exists := h.deviceClients[client.DeviceID]; exists {
					for i, conn := range conns {
						if conn == client {
							h.deviceClients[client.DeviceID] = append(conns[:i], conns[i+1:]...)
							break
						}
					}
					// 不立刻 delete：交给 timer 决定是否清理，给断开-重连留窗口
				}
			}

			// 3) 启动/重置 GC：仅当设备确实无任何连接时才清理
			deviceID := client.DeviceID
			if t, ok := h.gcTimers[deviceID]; ok {
				t.Stop()
			}
			h.gcTimers[deviceID] = time.AfterFunc(sessionGCGrace, func() {
				// timer 回调里不要直接用 client 指针（可能已复用），用 deviceID 查当前状态
				h.mu.RLock()
				conns := h.deviceClients[deviceID]
				h.mu.RUnlock()

				if len(conns) > 0 {
					// 设备重新上线了，不清理
					return
				}

				h.mu.Lock()
				delete(h.deviceClients, deviceID)
				delete(h.Sessions, deviceID)
				delete(h.gcTimers, deviceID)
				h.mu.Unlock()

				if h.onSessionExpired != nil {
					h.onSessionExpired(deviceID)
				}
			})

			h.mu.Unlock()

		case message := <-h.broadcast:
			// 注意：不能在 RLock 下修改 map / close channel，否则会引发竞态/崩溃。
			var toRemove []*Client
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}
			h.mu.RUnlock()

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; !ok {
						continue
					}
					delete(h.clients, client)
					if conns, exists := h.deviceClients[client.DeviceID]; exists {
						for i, conn := range conns {
							if conn == client {
								h.deviceClients[client.DeviceID] = append(conns[:i], conns[i+1:]...)
								break
							}
						}
						if len(h.deviceClients[client.DeviceID]) == 0 {
							delete(h.deviceClients, client.DeviceID)
						}
					}
					// close 之前再确认一次，避免 panic（多处 close 的竞态）
					func() {
						defer func() { _ = recover() }()
						close(client.send)
					}()
				}
				h.mu.Unlock()
			}
		}
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// SendToDevice 向某台设备的所有活跃连接推送（非阻塞，慢连接丢弃本条）
func (h *WsServer) SendToDevice(deviceID string, message []byte) {
	h.mu.RLock()
	conns := h.deviceClients[deviceID]
	for _, client := range conns {
		select {
		case client.send <- message:
		default:
		}
	}
	h.mu.RUnlock()
}

// Broadcast 向所有在线连接广播
func (h *WsServer) Broadcast(message []byte) {
	h.broadcast <- message
}

// OnlineDeviceIDs 当前有活跃连接的设备列表
func (h *WsServer) OnlineDeviceIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.deviceClients))
	for deviceID, conns := range h.deviceClients {
		if len(conns) > 0 {
			out = append(out, deviceID)
		}
	}
	return out
}

// SessionState 会话即时状态（通知抑制规则的输入）
func (h *WsServer) SessionState(deviceID string) (page, openPeer string, ok bool) {
	h.mu.RLock()
	sess := h.Sessions[deviceID]
	conns := len(h.deviceClients[deviceID])
	h.mu.RUnlock()

	if sess == nil || conns == 0 {
		return "", "", false
	}
	page, openPeer = sess.Snapshot()
	return page, openPeer, true
}

// ServeWS 处理ws的请求
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, deviceID, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	// 建连时同步复用/创建设备级 session，保证 readPump 第一条消息就能用上
	h.mu.Lock()
	sess := h.Sessions[deviceID]
	if sess == nil {
		sess = &DeviceSession{DeviceID: deviceID, Username: username, lastSeen: time.Now()}
		h.Sessions[deviceID] = sess
	} else {
		sess.Username = username
	}
	// cancel GC timer（设备又上线了）
	if t, ok := h.gcTimers[deviceID]; ok {
		t.Stop()
		delete(h.gcTimers, deviceID)
	}
	h.mu.Unlock()

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		DeviceID: deviceID,
		Username: username,
		session:  sess,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
