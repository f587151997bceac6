// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventKeyDown
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  sdl.Scancode
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls pending SDL events. Returns true if the window should close.
// Resizes need no event: the preview reads the drawable size every frame.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}
		}
	}

	return quit
}

// IsKeyPressed checks if any of the keys was pressed this frame.
func (i *Input) IsKeyPressed(scancodes ...sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type != EventKeyDown {
			continue
		}
		for _, sc := range scancodes {
			if e.Key == sc {
				return true
			}
		}
	}
	return false
}
