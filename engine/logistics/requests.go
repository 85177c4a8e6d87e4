package logistics

import (
	"container/heap"

	"github.com/brackwater/colonysim/engine/core"
)

// RequestStatus is a request's lifecycle state. Transitions are
// single-direction (Pending -> InProgress -> fulfilled/deleted)
// except the explicit reset path back to Pending.
type RequestStatus uint8

const (
	RequestPending RequestStatus = iota
	RequestInProgress
)

// Request is one building's standing ask for a material.
type Request struct {
	ID         int
	Building   core.EntityID // destination
	Material   string
	Amount     float64
	Priority   int // lower is more urgent
	Timestamp  uint64
	Status     RequestStatus
	Source     core.EntityID
	Carrier    core.EntityID
	AssignedAt uint64
}

// RequestManager owns every live request and a priority queue index
// over the pending ones, ordered by (priority asc, timestamp asc) —
// the same container/heap idiom the pathfinder's open set uses.
type RequestManager struct {
	nextID   int
	requests map[int]*Request
	pending  *requestHeap
}

// NewRequestManager builds an empty manager.
func NewRequestManager() *RequestManager {
	h := &requestHeap{}
	heap.Init(h)
	return &RequestManager{requests: make(map[int]*Request), pending: h}
}

// Add creates a new Pending request and returns it.
func (m *RequestManager) Add(building core.EntityID, material string, amount float64, priority int, timestamp uint64) *Request {
	m.nextID++
	r := &Request{
		ID:        m.nextID,
		Building:  building,
		Material:  material,
		Amount:    amount,
		Priority:  priority,
		Timestamp: timestamp,
		Status:    RequestPending,
	}
	m.requests[r.ID] = r
	heap.Push(m.pending, r)
	return r
}

// GetPending returns every still-live Pending request in (priority,
// timestamp) order. Fulfilled/cancelled requests are pruned from the
// heap lazily here rather than eagerly at delete time, since a heap
// has no O(1) arbitrary-element removal; popping everything off and
// pushing back only entries still tracked in m.requests costs
// O(n log n) per call but keeps Add/Assign/Reset O(log n) and stops
// the heap from accumulating dead (Fulfilled/cancelled) entries
// forever across a long-running simulation.
func (m *RequestManager) GetPending() []*Request {
	drained := make([]*Request, 0, m.pending.Len())
	live := make([]*Request, 0, m.pending.Len())
	for m.pending.Len() > 0 {
		r := heap.Pop(m.pending).(*Request)
		if cur, ok := m.requests[r.ID]; ok {
			drained = append(drained, r)
			if cur.Status == RequestPending {
				live = append(live, r)
			}
		}
	}
	for _, r := range drained {
		heap.Push(m.pending, r)
	}
	return live
}

func less(a, b *Request) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Timestamp < b.Timestamp
}

// Assign marks a request InProgress with its matched source and
// carrier.
func (m *RequestManager) Assign(req *Request, source, carrier core.EntityID, now uint64) {
	req.Status = RequestInProgress
	req.Source = source
	req.Carrier = carrier
	req.AssignedAt = now
}

// Fulfill deletes a request entirely (it has been delivered).
func (m *RequestManager) Fulfill(req *Request) {
	delete(m.requests, req.ID)
}

// Reset returns a request to Pending, clearing its assignment. reason
// is accepted for logging by callers; it is not stored on Request.
func (m *RequestManager) Reset(req *Request, reason string) {
	req.Status = RequestPending
	req.Source = 0
	req.Carrier = 0
	req.AssignedAt = 0
}

// CancelForBuilding deletes every request whose destination is b.
func (m *RequestManager) CancelForBuilding(b core.EntityID) []*Request {
	var cancelled []*Request
	for id, r := range m.requests {
		if r.Building == b {
			cancelled = append(cancelled, r)
			delete(m.requests, id)
		}
	}
	return cancelled
}

// ResetFromSource resets every InProgress request whose matched
// source is b back to Pending (used when b is destroyed).
func (m *RequestManager) ResetFromSource(b core.EntityID) []*Request {
	var affected []*Request
	for _, r := range m.requests {
		if r.Status == RequestInProgress && r.Source == b {
			m.Reset(r, "source_removed")
			affected = append(affected, r)
		}
	}
	return affected
}

// ResetForCarrier resets any request assigned to carrier c back to
// Pending (used when a carrier is removed).
func (m *RequestManager) ResetForCarrier(c core.EntityID) []*Request {
	var affected []*Request
	for _, r := range m.requests {
		if r.Status == RequestInProgress && r.Carrier == c {
			m.Reset(r, "carrier_removed")
			affected = append(affected, r)
		}
	}
	return affected
}

// Stalled returns InProgress requests whose assignment has aged past
// maxAgeTicks as of nowTick.
func (m *RequestManager) Stalled(nowTick uint64, maxAgeTicks uint64) []*Request {
	var out []*Request
	for _, r := range m.requests {
		if r.Status == RequestInProgress && r.AssignedAt+maxAgeTicks < nowTick {
			out = append(out, r)
		}
	}
	return out
}

// requestHeap is a container/heap over the requests still present
// (Pending or InProgress), ordered by (priority, timestamp); GetPending
// drops entries for fulfilled or cancelled requests and filters to
// Pending status at read time rather than removing InProgress entries from
// the heap, since a reset needs to make a request visible again
// without re-allocating a heap slot.
type requestHeap []*Request

func (h requestHeap) Len() int            { return len(h) }
func (h requestHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h requestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *requestHeap) Push(x interface{}) { *h = append(*h, x.(*Request)) }
func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
