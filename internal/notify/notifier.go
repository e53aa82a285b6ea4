// Package notify is the in-process stand-in for a real-time transport.
// Delivery is synchronous, in registration order, once per publish, within
// this process only. A production system would put a network broadcast
// (WebSocket fan-out, CRDT sync) behind the same surface.
package notify

import "sync"

// Callback receives the new code and the id of the user who produced the
// edit. The notifier delivers to every subscriber, including the editor;
// self-echo suppression is the consumer's job.
type Callback func(code, userID string)

type subscription struct {
	fn Callback
}

// Notifier keeps a per-room list of subscribers.
type Notifier struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

func New() *Notifier {
	return &Notifier{subs: make(map[string][]*subscription)}
}

// Subscribe registers fn for roomID and returns a function that removes
// exactly this registration. Calling it more than once is a no-op.
func (n *Notifier) Subscribe(roomID string, fn Callback) func() {
	sub := &subscription{fn: fn}

	n.mu.Lock()
	n.subs[roomID] = append(n.subs[roomID], sub)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		list := n.subs[roomID]
		for i, s := range list {
			if s == sub {
				n.subs[roomID] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber registered for roomID at the time of the
// call, synchronously and in registration order. A subscriber added during
// delivery is not included in the in-flight publish.
func (n *Notifier) Publish(roomID, code, userID string) {
	n.mu.Lock()
	list := n.subs[roomID]
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)
	n.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(code, userID)
	}
}

// SubscriberCount reports the current number of subscribers for a room.
func (n *Notifier) SubscriberCount(roomID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[roomID])
}
