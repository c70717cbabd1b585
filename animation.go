package parterm

import "time"

// defaultFrameGap is used when a frame specifies no gap, mirroring the
// Kitty graphics protocol's documented default of ~40ms (25fps) when gap=0.
const defaultFrameGap = 40 * time.Millisecond

// AnimationState is the playback state of a Kitty multi-frame image.
type AnimationState uint8

const (
	AnimationStopped AnimationState = iota
	AnimationPlaying
	AnimationPaused
)

// Frame is one frame of a Kitty animation: a reference to a previously
// stored image plus the delay before advancing to the next frame.
type Frame struct {
	ImageID uint32
	GapMs   uint32
}

// Animation tracks playback state for one root image's frame sequence.
// Frames are transmitted individually via the Kitty 'f' (frame) action and
// appended here; 'a' (animate) controls State and LoopCount.
type Animation struct {
	RootImageID  uint32
	Frames       []Frame
	State        AnimationState
	CurrentFrame int
	LastAdvance  time.Time
	LoopCount    int // 0 = loop forever
	loopsDone    int
}

// CurrentImageID returns the image ID that should be displayed right now,
// or the root image ID if no frames have been added yet.
func (a *Animation) CurrentImageID() uint32 {
	if len(a.Frames) == 0 {
		return a.RootImageID
	}
	return a.Frames[a.CurrentFrame].ImageID
}

// Update advances the animation if its current frame's gap has elapsed.
// Returns the root image ID if the displayed frame changed, so callers can
// refresh placements pointing at it.
func (a *Animation) Update(now time.Time) (changed []uint32) {
	if a.State != AnimationPlaying || len(a.Frames) == 0 {
		return nil
	}
	if a.LastAdvance.IsZero() {
		a.LastAdvance = now
		return nil
	}

	gap := time.Duration(a.Frames[a.CurrentFrame].GapMs) * time.Millisecond
	if gap <= 0 {
		gap = defaultFrameGap
	}
	if now.Sub(a.LastAdvance) < gap {
		return nil
	}

	a.LastAdvance = now
	a.CurrentFrame++
	if a.CurrentFrame >= len(a.Frames) {
		a.CurrentFrame = 0
		a.loopsDone++
		if a.LoopCount > 0 && a.loopsDone >= a.LoopCount {
			a.State = AnimationStopped
		}
	}
	return []uint32{a.RootImageID}
}

// AddFrame appends a frame to the root image's animation, creating the
// Animation if this is the first frame seen for it.
func (m *ImageManager) AddFrame(rootID uint32, frame Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.animations == nil {
		m.animations = make(map[uint32]*Animation)
	}
	anim, ok := m.animations[rootID]
	if !ok {
		anim = &Animation{RootImageID: rootID}
		m.animations[rootID] = anim
	}
	anim.Frames = append(anim.Frames, frame)
}

// SetAnimationState applies an 'a=' animate command to the root image's
// Animation, creating an empty (frameless) one if none exists yet.
func (m *ImageManager) SetAnimationState(rootID uint32, state AnimationState, loopCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.animations == nil {
		m.animations = make(map[uint32]*Animation)
	}
	anim, ok := m.animations[rootID]
	if !ok {
		anim = &Animation{RootImageID: rootID}
		m.animations[rootID] = anim
	}
	anim.State = state
	if loopCount > 0 {
		anim.LoopCount = loopCount
	}
}

// AdvanceAnimations steps every playing animation and repoints placements
// showing its root image or any of its frame images at the newly current
// frame's image data. Returns the placement IDs that changed so callers can
// notify clients.
func (m *ImageManager) AdvanceAnimations(now time.Time) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changedPlacements []uint32
	for rootID, anim := range m.animations {
		changed := anim.Update(now)
		if len(changed) == 0 {
			continue
		}
		frameImageID := anim.CurrentImageID()
		for pid, p := range m.placements {
			shown := p.ImageID == rootID
			for _, f := range anim.Frames {
				shown = shown || f.ImageID == p.ImageID
			}
			if shown {
				p.ImageID = frameImageID
				changedPlacements = append(changedPlacements, pid)
			}
		}
	}
	return changedPlacements
}
