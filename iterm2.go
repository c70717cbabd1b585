package parterm

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// iTerm2 protocol support (OSC 1337): user variables, badge format, remote
// host, and base64 inline images. The payload of OSC 1337 is a single
// "Key=Rest" pair; for SetUserVar, Rest is itself "NAME=BASE64VALUE".

// SetUserVar stores a named user variable (OSC 1337 SetUserVar), typically
// surfaced by shell prompts for status-line integrations.
func (t *Terminal) SetUserVar(name, value string) {
	if t.middleware != nil && t.middleware.SetUserVar != nil {
		t.middleware.SetUserVar(name, value, t.setUserVarInternal)
		return
	}
	t.setUserVarInternal(name, value)
}

func (t *Terminal) setUserVarInternal(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.userVars[name]
	t.userVars[name] = value
	t.emit(EventUserVarChanged, UserVarChangedEvent{Name: name, OldValue: old, NewValue: value})
}

// GetUserVar returns the value of a user variable, or "" if unset.
func (t *Terminal) GetUserVar(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userVars[name]
}

// GetUserVars returns a copy of all user variables.
func (t *Terminal) GetUserVars() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	vars := make(map[string]string, len(t.userVars))
	for k, v := range t.userVars {
		vars[k] = v
	}
	return vars
}

// ClearUserVars removes all user variables.
func (t *Terminal) ClearUserVars() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userVars = make(map[string]string)
}

// SetBadgeFormat stores the Dock badge template (OSC 1337 SetBadgeFormat),
// a base64-encoded string that may reference user variables like \(name).
func (t *Terminal) SetBadgeFormat(format string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.badgeFormat = format
	t.emit(EventBadgeChanged, BadgeChangedEvent{Badge: format})
}

// BadgeFormat returns the current Dock badge template.
func (t *Terminal) BadgeFormat() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.badgeFormat
}

// SetRemoteHost stores the user@host pair (OSC 1337 RemoteHost).
func (t *Terminal) SetRemoteHost(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remoteHost = host
}

// RemoteHost returns the current user@host pair.
func (t *Terminal) RemoteHost() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.remoteHost
}

// handleITerm2 parses an OSC 1337 payload and dispatches it to the
// appropriate handler. The payload is "Key=Rest"; unrecognized keys are
// ignored.
func (t *Terminal) handleITerm2(payload string) {
	key, rest, ok := strings.Cut(payload, "=")
	if !ok {
		return
	}

	switch key {
	case "SetUserVar":
		name, b64value, ok := strings.Cut(rest, "=")
		if !ok {
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(b64value)
		if err != nil {
			return
		}
		t.SetUserVar(name, string(decoded))
	case "SetBadgeFormat":
		t.SetBadgeFormat(rest)
	case "RemoteHost":
		t.SetRemoteHost(rest)
	case "CurrentDir":
		t.SetWorkingDirectory("file://" + rest)
	case "File":
		t.handleITerm2File(rest)
	}
}

// handleITerm2File parses a "File=[key=value;...]:base64data" inline image
// transfer and stores the decoded image in the shared graphics store.
func (t *Terminal) handleITerm2File(rest string) {
	meta, data, ok := strings.Cut(rest, ":")
	if !ok {
		data = meta
		meta = ""
	}

	inline := true
	width, height := 0, 0
	for _, kv := range strings.Split(meta, ";") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "inline":
			inline = v == "1"
		case "width":
			width, _ = strconv.Atoi(strings.TrimSuffix(v, "px"))
		case "height":
			height, _ = strconv.Atoi(strings.TrimSuffix(v, "px"))
		}
	}
	if !inline {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	pixels, w, h, err := decodePNG(raw)
	if err != nil {
		return
	}
	if width > 0 {
		w = uint32(width)
	}
	if height > 0 {
		h = uint32(height)
	}

	t.mu.Lock()
	images := t.images
	cursorRow, cursorCol := t.cursor.Row, t.cursor.Col
	t.mu.Unlock()
	if images == nil {
		return
	}

	imageID := images.Store(GraphicsProtocolITerm2, w, h, pixels)
	images.Place(&ImagePlacement{
		ImageID:  imageID,
		Protocol: GraphicsProtocolITerm2,
		Row:      cursorRow,
		Col:      cursorCol,
		Cols:     1,
		Rows:     1,
		SrcW:     w,
		SrcH:     h,
	})

	t.mu.Lock()
	t.emit(EventGraphicsAdded, GraphicsAddedEvent{Row: cursorRow, Protocol: GraphicsProtocolITerm2.String()})
	t.mu.Unlock()
}
