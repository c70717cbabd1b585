package parterm

import (
	"strconv"
	"strings"
)

// NotificationPayload carries a desktop notification request (OSC 99), the
// kitty desktop-notifications protocol. Fields are assembled across one or
// more chunks of metadata before the final dispatch.
type NotificationPayload struct {
	ID          string
	Done        bool
	PayloadType string // "title", "body", "close", "?" (query)
	Encoding    string // "" (plain) or "1" (base64)
	Actions     []string
	TrackClose  bool
	Timeout     int
	AppName     string
	Type        string
	IconName    string
	IconCacheID string
	Sound       string
	Urgency     int
	Occasion    string
	Data        []byte
}

// DesktopNotification processes an OSC 99 desktop notification payload,
// forwarding it to the configured NotificationProvider and writing any
// query response back through the response provider.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()
	if provider == nil {
		return
	}
	response := provider.Notify(payload)
	if response != "" {
		t.writeResponseString(response)
	}
}

// SetNotificationProvider sets the notification provider at runtime.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// NotificationProvider returns the current notification provider.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// notifySimple normalizes a plain-text notification (OSC 9, OSC 777) into a
// NotificationPayload and dispatches it.
func (t *Terminal) notifySimple(appName, message string) {
	t.DesktopNotification(&NotificationPayload{
		PayloadType: "body",
		Done:        true,
		AppName:     appName,
		Data:        []byte(message),
	})
}

// notifyProgress normalizes a ConEmu/Kitty-style progress report (OSC 9;4)
// into a NotificationPayload and dispatches it. state follows the ConEmu
// convention: 0 none, 1 normal, 2 error, 3 indeterminate, 4 paused.
func (t *Terminal) notifyProgress(state, percent string) {
	st, _ := strconv.Atoi(state)
	pct, _ := strconv.Atoi(percent)
	t.DesktopNotification(&NotificationPayload{
		PayloadType: "progress",
		Done:        true,
		Type:        "progress",
		Urgency:     st,
		Occasion:    strconv.Itoa(pct),
		Data:        []byte(strings.Join([]string{state, percent}, ";")),
	})

	action := "set"
	switch st {
	case 0:
		action = "remove"
	}
	t.mu.Lock()
	t.emit(EventProgressBarChanged, ProgressBarChangedEvent{Action: action, State: progressStateName(st), Percent: pct})
	t.mu.Unlock()
}

// progressStateName maps the ConEmu/Kitty progress-state integer to its
// wire-facing name: 0 hidden, 1 normal, 2 error, 3 indeterminate, 4 paused.
func progressStateName(state int) string {
	switch state {
	case 0:
		return "hidden"
	case 1:
		return "normal"
	case 2:
		return "error"
	case 3:
		return "indeterminate"
	case 4:
		return "paused"
	default:
		return "unknown"
	}
}
