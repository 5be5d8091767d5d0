package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory; tests use it to assert on them.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Topic   string
	Payload any
}

func (r *Recorder) Publish(_ context.Context, topic string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Topic: topic, Payload: payload})
}

func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		topics = append(topics, e.Topic)
	}
	return topics
}
