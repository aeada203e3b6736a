package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thinky-app/thinky-sdk/cons"
)

// 通知类型
const (
	NotifyKindCommunity = "community" // 社区新留言
	NotifyKindDirect    = "direct"    // 私信
	NotifyKindSystem    = "system"    // 系统/管理员广播
)

const (
	defaultMaxVisible   = 3               // 同屏最多弹窗数
	defaultDismissAfter = 5 * time.Second // 自动收起时间
)

// Notification 一条弹窗通知
type Notification struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"-"` // 目标设备（不下发）
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	FromDeviceID string    `json:"from_device_id,omitempty"` // 私信来源（点击跳转会话用）
	CreatedAt    time.Time `json:"created_at"`
}

// deviceNotifyState 单台设备的弹窗状态：可见槽位 + FIFO 等待队列
type deviceNotifyState struct {
	visible map[string]*time.Timer // notifyID -> 自动收起定时器
	queue   []*Notification
}

// NotificationService 弹窗通知分发
//
// 规则：
//   - 同屏最多 maxVisible 条；多出的按 FIFO 排队，槽位空出来再顶上。
//   - 每条可见通知 dismissAfter 后自动收起；手动关闭同样释放槽位。
//   - 抑制：社区消息不打扰正停在社区页的设备；私信不打扰恰好开着
//     这个会话的设备（页面内已经原地显示了，弹窗是冗余）。
//
// 状态全部在内存里：弹窗本来就是会话级的瞬时 UI，设备断连即清空。
type NotificationService struct {
	*Service

	maxVisible   int
	dismissAfter time.Duration

	mu     sync.Mutex
	states map[string]*deviceNotifyState
}

func NewNotificationService(s *Service, maxVisible int, dismissAfter time.Duration) *NotificationService {
	if maxVisible <= 0 {
		maxVisible = defaultMaxVisible
	}
	if dismissAfter <= 0 {
		dismissAfter = defaultDismissAfter
	}
	return &NotificationService{
		Service:      s,
		maxVisible:   maxVisible,
		dismissAfter: dismissAfter,
		states:       make(map[string]*deviceNotifyState),
	}
}

// suppressed 抑制规则判断。设备无活跃连接也视为抑制（弹窗无处可弹）。
func (s *NotificationService) suppressed(n *Notification) bool {
	if s.SessionState == nil {
		return false
	}
	page, openPeer, ok := s.SessionState(n.DeviceID)
	if !ok {
		return true
	}
	switch n.Kind {
	case NotifyKindCommunity:
		return page == "community"
	case NotifyKindDirect:
		return openPeer != "" && openPeer == n.FromDeviceID
	}
	return false
}

// Publish 投递一条通知：有空槽立即展示，否则排队。
func (s *NotificationService) Publish(n *Notification) {
	if n == nil || n.DeviceID == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if s.suppressed(n) {
		return
	}

	s.mu.Lock()
	st := s.states[n.DeviceID]
	if st == nil {
		st = &deviceNotifyState{visible: make(map[string]*time.Timer)}
		s.states[n.DeviceID] = st
	}
	if len(st.visible) < s.maxVisible {
		s.showLocked(n.DeviceID, st, n)
	} else {
		st.queue = append(st.queue, n)
	}
	s.mu.Unlock()
}

// PublishToOnline 给所有在线设备各投一条（except 除外，通常是发送者自己）
func (s *NotificationService) PublishToOnline(n *Notification, except string) {
	if s.OnlineDevices == nil || n == nil {
		return
	}
	for _, deviceID := range s.OnlineDevices() {
		if deviceID == except {
			continue
		}
		clone := *n
		clone.DeviceID = deviceID
		clone.ID = "" // 每台设备独立 ID
		s.Publish(&clone)
	}
}

// showLocked 占一个可见槽位并推送（调用方持有 s.mu）
func (s *NotificationService) showLocked(deviceID string, st *deviceNotifyState, n *Notification) {
	notifyID := n.ID
	st.visible[notifyID] = time.AfterFunc(s.dismissAfter, func() {
		s.Dismiss(deviceID, notifyID)
	})
	s.push(deviceID, cons.EventNotifyShow, n)
}

// Dismiss 收起一条通知（自动超时和手动关闭都走这里），并顶上队列里的下一条。
// 对已收起的 ID 重复调用是 no-op（定时器和手动关闭可能竞争）。
func (s *NotificationService) Dismiss(deviceID, notifyID string) {
	s.mu.Lock()
	st := s.states[deviceID]
	if st == nil {
		s.mu.Unlock()
		return
	}
	t, ok := st.visible[notifyID]
	if !ok {
		s.mu.Unlock()
		return
	}
	t.Stop()
	delete(st.visible, notifyID)
	s.push(deviceID, cons.EventNotifyDismiss, map[string]string{"id": notifyID})

	// FIFO 顶替
	for len(st.queue) > 0 && len(st.visible) < s.maxVisible {
		next := st.queue[0]
		st.queue = st.queue[1:]
		s.showLocked(deviceID, st, next)
	}
	s.mu.Unlock()
}

// Reset 设备断连时清空其弹窗状态
func (s *NotificationService) Reset(deviceID string) {
	s.mu.Lock()
	if st := s.states[deviceID]; st != nil {
		for _, t := range st.visible {
			t.Stop()
		}
		delete(s.states, deviceID)
	}
	s.mu.Unlock()
}

// Pending 某设备当前可见数与排队数（测试/调试用）
func (s *NotificationService) Pending(deviceID string) (visible, queued int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[deviceID]
	if st == nil {
		return 0, 0
	}
	return len(st.visible), len(st.queue)
}

func (s *NotificationService) push(deviceID, eventType string, payload any) {
	if s.WsNotifier == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"type": eventType, "data": payload})
	if err != nil {
		return
	}
	s.WsNotifier(deviceID, b)
}
