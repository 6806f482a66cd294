package core

import "bitbucket.org/smartystreets/swapper/contracts"

type EventKind int

const (
	EventProgress EventKind = iota
	EventItemStatus
	EventPhase
	EventError
	EventCompleted
)

// Event is one notification, captured so a presentation loop can consume
// it on its own goroutine.
type Event struct {
	Kind     EventKind
	Percent  int
	Detail   string
	Index    int
	Status   contracts.Status
	SizeText string
	Phase    contracts.Phase
	Message  string
	Success  bool
}

// EventChannel is a Notifier that queues events on a buffered channel. The
// channel is closed after Completed.
type EventChannel struct {
	events chan Event
}

func NewEventChannel(capacity int) *EventChannel {
	return &EventChannel{events: make(chan Event, capacity)}
}

func (this *EventChannel) Events() <-chan Event { return this.events }

func (this *EventChannel) OverallProgress(percent int, detail string) {
	this.events <- Event{Kind: EventProgress, Percent: percent, Detail: detail}
}
func (this *EventChannel) ItemStatus(index int, status contracts.Status, sizeText string) {
	this.events <- Event{Kind: EventItemStatus, Index: index, Status: status, SizeText: sizeText}
}
func (this *EventChannel) Phase(phase contracts.Phase) {
	this.events <- Event{Kind: EventPhase, Phase: phase}
}
func (this *EventChannel) Error(message string) {
	this.events <- Event{Kind: EventError, Message: message}
}
func (this *EventChannel) Completed(success bool) {
	this.events <- Event{Kind: EventCompleted, Success: success}
	close(this.events)
}
