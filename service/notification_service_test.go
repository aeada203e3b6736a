package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// notifyRecorder 收集 WsNotifier 推送，便于断言事件序列
type notifyRecorder struct {
	mu     sync.Mutex
	events []string // "deviceID:type"
}

func (r *notifyRecorder) notifier() func(deviceID string, message []byte) {
	return func(deviceID string, message []byte) {
		var envelope struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(message, &envelope)
		r.mu.Lock()
		r.events = append(r.events, deviceID+":"+envelope.Type)
		r.mu.Unlock()
	}
}

func (r *notifyRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestNotifyService(rec *notifyRecorder, dismissAfter time.Duration) *NotificationService {
	base := &Service{
		TablePrefix: "tk_",
		WsNotifier:  rec.notifier(),
		SessionState: func(deviceID string) (string, string, bool) {
			// 所有设备都在 home 页、没开会话
			return "home", "", true
		},
	}
	return NewNotificationService(base, 3, dismissAfter)
}

func TestNotificationService_QueueOverflow(t *testing.T) {
	rec := &notifyRecorder{}
	ns := newTestNotifyService(rec, time.Hour)

	for i := 0; i < 5; i++ {
		ns.Publish(&Notification{DeviceID: "dev-a", Kind: NotifyKindSystem, Body: "n"})
	}

	visible, queued := ns.Pending("dev-a")
	if visible != 3 || queued != 2 {
		t.Fatalf("expected 3 visible / 2 queued, got %d / %d", visible, queued)
	}
	// 只有可见的 3 条被推送
	if rec.count() != 3 {
		t.Fatalf("expected 3 show events, got %d", rec.count())
	}
}

func TestNotificationService_DismissPromotesFIFO(t *testing.T) {
	rec := &notifyRecorder{}
	ns := newTestNotifyService(rec, time.Hour)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		n := &Notification{DeviceID: "dev-a", Kind: NotifyKindSystem, Body: "n"}
		ns.Publish(n)
		ids = append(ids, n.ID)
	}

	ns.Dismiss("dev-a", ids[0])
	visible, queued := ns.Pending("dev-a")
	if visible != 3 || queued != 1 {
		t.Fatalf("expected queue head promoted: 3 visible / 1 queued, got %d / %d", visible, queued)
	}

	// 对同一 ID 重复收起是 no-op
	ns.Dismiss("dev-a", ids[0])
	visible, queued = ns.Pending("dev-a")
	if visible != 3 || queued != 1 {
		t.Fatalf("repeat dismiss should be no-op, got %d / %d", visible, queued)
	}
}

func TestNotificationService_AutoDismiss(t *testing.T) {
	rec := &notifyRecorder{}
	ns := newTestNotifyService(rec, 30*time.Millisecond)

	ns.Publish(&Notification{DeviceID: "dev-a", Kind: NotifyKindSystem, Body: "n"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		visible, _ := ns.Pending("dev-a")
		if visible == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("notification not auto-dismissed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNotificationService_Suppression(t *testing.T) {
	rec := &notifyRecorder{}
	base := &Service{
		TablePrefix: "tk_",
		WsNotifier:  rec.notifier(),
		SessionState: func(deviceID string) (string, string, bool) {
			switch deviceID {
			case "on-community":
				return "community", "", true
			case "chatting-with-x":
				return "direct", "dev-x", true
			case "offline":
				return "", "", false
			}
			return "home", "", true
		},
	}
	ns := NewNotificationService(base, 3, time.Hour)

	// 停在社区页：社区通知被抑制，私信不受影响
	ns.Publish(&Notification{DeviceID: "on-community", Kind: NotifyKindCommunity, Body: "n"})
	if v, _ := ns.Pending("on-community"); v != 0 {
		t.Fatalf("community notify should be suppressed on community page")
	}
	ns.Publish(&Notification{DeviceID: "on-community", Kind: NotifyKindDirect, FromDeviceID: "dev-x", Body: "n"})
	if v, _ := ns.Pending("on-community"); v != 1 {
		t.Fatalf("direct notify should still show")
	}

	// 正开着 dev-x 的会话：来自 dev-x 的私信抑制，别人的照常
	ns.Publish(&Notification{DeviceID: "chatting-with-x", Kind: NotifyKindDirect, FromDeviceID: "dev-x", Body: "n"})
	if v, _ := ns.Pending("chatting-with-x"); v != 0 {
		t.Fatalf("direct notify from open peer should be suppressed")
	}
	ns.Publish(&Notification{DeviceID: "chatting-with-x", Kind: NotifyKindDirect, FromDeviceID: "dev-y", Body: "n"})
	if v, _ := ns.Pending("chatting-with-x"); v != 1 {
		t.Fatalf("direct notify from other peer should show")
	}

	// 离线：一律抑制
	ns.Publish(&Notification{DeviceID: "offline", Kind: NotifyKindSystem, Body: "n"})
	if v, q := ns.Pending("offline"); v != 0 || q != 0 {
		t.Fatalf("offline device should get nothing, got %d / %d", v, q)
	}
}

func TestNotificationService_Reset(t *testing.T) {
	rec := &notifyRecorder{}
	ns := newTestNotifyService(rec, time.Hour)

	for i := 0; i < 4; i++ {
		ns.Publish(&Notification{DeviceID: "dev-a", Kind: NotifyKindSystem, Body: "n"})
	}
	ns.Reset("dev-a")
	if v, q := ns.Pending("dev-a"); v != 0 || q != 0 {
		t.Fatalf("expected cleared state, got %d / %d", v, q)
	}
}
