package session

import (
	"sync"
	"time"
)

// Navigator moves the current-question pointer. Leaving a question
// attributes the time spent on it to the ledger.
type Navigator struct {
	mu        sync.Mutex
	ledger    *Ledger
	ids       []uint
	now       func() time.Time
	current   int
	enteredAt time.Time
	entered   bool
}

func NewNavigator(ledger *Ledger, now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	return &Navigator{
		ledger: ledger,
		ids:    ledger.QuestionIDs(),
		now:    now,
	}
}

// Enter places the pointer at index without attributing time, used when a
// session starts or resumes. Out-of-range indices fall back to 0.
func (n *Navigator) Enter(index int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if index < 0 || index >= len(n.ids) {
		index = 0
	}
	n.current = index
	n.enterLocked()
}

// GoTo moves to index. Out-of-range or same-index requests are no-ops.
func (n *Navigator) GoTo(index int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if index < 0 || index >= len(n.ids) || index == n.current {
		return false
	}
	n.leaveLocked()
	n.current = index
	n.enterLocked()
	return true
}

func (n *Navigator) Next() bool {
	return n.GoTo(n.Current() + 1)
}

func (n *Navigator) Previous() bool {
	return n.GoTo(n.Current() - 1)
}

func (n *Navigator) Current() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// CurrentQuestion returns the id of the question under the pointer.
func (n *Navigator) CurrentQuestion() uint {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.ids) == 0 {
		return 0
	}
	return n.ids[n.current]
}

// Finalize attributes the time spent on the current question so far
// without moving.
func (n *Navigator) Finalize() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.entered {
		return
	}
	n.leaveLocked()
	n.enteredAt = n.now()
}

func (n *Navigator) leaveLocked() {
	if !n.entered || len(n.ids) == 0 {
		return
	}
	_ = n.ledger.AddTimeSpent(n.ids[n.current], n.now().Sub(n.enteredAt))
}

func (n *Navigator) enterLocked() {
	if len(n.ids) == 0 {
		return
	}
	_ = n.ledger.MarkVisited(n.ids[n.current])
	n.enteredAt = n.now()
	n.entered = true
}
