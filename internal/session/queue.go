package session

import (
	"sort"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// QueuedInput is a single client's buffered input frame, tagged with
// its sequence number.
type QueuedInput struct {
	Sequence uint32
	Frame    entities.InputFrame
}

// clientQueue buffers one client's InputFrames between ticks, ordered
// and deduplicated by sequence number.
type clientQueue struct {
	frames       map[uint32]*QueuedInput
	ordered      []uint32
	maxSize      int
	nextSequence uint32
}

func newClientQueue(maxSize int) *clientQueue {
	return &clientQueue{
		frames:       make(map[uint32]*QueuedInput),
		ordered:      make([]uint32, 0),
		maxSize:      maxSize,
		nextSequence: 1,
	}
}

// enqueue adds a frame under the given sequence number. Returns false
// if the sequence is stale (already processed), a duplicate, or the
// queue is full.
func (q *clientQueue) enqueue(seq uint32, frame entities.InputFrame) bool {
	if seq < q.nextSequence {
		return false
	}
	if _, exists := q.frames[seq]; exists {
		return false
	}
	if len(q.frames) >= q.maxSize {
		return false
	}

	q.frames[seq] = &QueuedInput{Sequence: seq, Frame: frame}
	q.ordered = append(q.ordered, seq)
	sort.Slice(q.ordered, func(i, j int) bool { return q.ordered[i] < q.ordered[j] })
	return true
}

// dequeue removes and returns the lowest-sequence buffered frame.
func (q *clientQueue) dequeue() (*QueuedInput, bool) {
	if len(q.ordered) == 0 {
		return nil, false
	}
	seq := q.ordered[0]
	q.ordered = q.ordered[1:]
	frame := q.frames[seq]
	delete(q.frames, seq)
	q.nextSequence = seq + 1
	return frame, true
}

func (q *clientQueue) size() int {
	return len(q.frames)
}

// InputQueue buffers InputFrames arriving between ticks, keyed by
// client id, and drains them each tick into the map rules.Step
// expects. §5 requires ascending client-id iteration order for
// deterministic output; Drain enforces it.
type InputQueue struct {
	clients map[uint32]*clientQueue
	maxSize int
}

// NewInputQueue creates an InputQueue whose per-client backlog is
// capped at maxSizePerClient frames.
func NewInputQueue(maxSizePerClient int) *InputQueue {
	return &InputQueue{
		clients: make(map[uint32]*clientQueue),
		maxSize: maxSizePerClient,
	}
}

// Enqueue buffers one client's frame under the given sequence number.
// Returns false on a duplicate, stale, or overflowing sequence.
func (q *InputQueue) Enqueue(seq uint32, frame entities.InputFrame) bool {
	cq, ok := q.clients[frame.ClientID]
	if !ok {
		cq = newClientQueue(q.maxSize)
		q.clients[frame.ClientID] = cq
	}
	return cq.enqueue(seq, frame)
}

// Drain dequeues the oldest buffered frame for every client that has
// one, in ascending client-id order, and returns the resulting input
// map. A client with no buffered frame this tick is simply absent;
// Step treats an absent client as zero movement and no actions.
func (q *InputQueue) Drain() map[uint32]entities.InputFrame {
	ids := make([]uint32, 0, len(q.clients))
	for id := range q.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[uint32]entities.InputFrame, len(ids))
	for _, id := range ids {
		if queued, ok := q.clients[id].dequeue(); ok {
			out[id] = queued.Frame
		}
	}
	return out
}

// Size returns the number of frames currently buffered for a client.
func (q *InputQueue) Size(clientID uint32) int {
	cq, ok := q.clients[clientID]
	if !ok {
		return 0
	}
	return cq.size()
}

// TotalSize returns the number of frames buffered across every client,
// used to report overall queue depth to observability.
func (q *InputQueue) TotalSize() int {
	total := 0
	for _, cq := range q.clients {
		total += cq.size()
	}
	return total
}

// RemoveClient drops all buffered state for a disconnected client.
func (q *InputQueue) RemoveClient(clientID uint32) {
	delete(q.clients, clientID)
}
