// Implements the WaitQueue, an intrusive FIFO line of processes.
// Processes join it through Into or Wait and leave it through Out.

package sim

import (
	"strings"
)

// WaitQueue is a two-way list of processes, typically the waiting line of a
// model (cars waiting to be washed, idle washers in a tearoom). The links
// live in the processes themselves, so insertion and removal are O(1) and a
// process is a member of at most one WaitQueue at a time.
//
// The zero value is an empty queue.
type WaitQueue struct {
	first, last *Process
	n           int
}

// Len returns the number of processes in the queue.
func (q *WaitQueue) Len() int { return q.n }

// Empty reports whether the queue has no members.
func (q *WaitQueue) Empty() bool { return q.n == 0 }

// First returns the process at the front of the queue, or nil.
func (q *WaitQueue) First() *Process { return q.first }

// Last returns the process at the back of the queue, or nil.
func (q *WaitQueue) Last() *Process { return q.last }

// Enqueue adds p to the back of the queue, leaving any queue it was in.
func (q *WaitQueue) Enqueue(p *Process) {
	if p == nil {
		panic("Enqueue: process must not be nil")
	}
	p.Out()
	q.link(p, q.last)
}

// PrependFront adds p at the front of the queue, leaving any queue it was in.
func (q *WaitQueue) PrependFront(p *Process) {
	if p == nil {
		panic("PrependFront: process must not be nil")
	}
	p.Out()
	q.link(p, nil)
}

// Dequeue removes and returns the process at the front, or nil.
func (q *WaitQueue) Dequeue() *Process {
	p := q.first
	if p != nil {
		q.unlink(p)
	}
	return p
}

// Items returns the members from front to back. The slice is a copy.
func (q *WaitQueue) Items() []*Process {
	items := make([]*Process, 0, q.n)
	for p := q.first; p != nil; p = p.qsuc {
		items = append(items, p)
	}
	return items
}

// Clear removes every member.
func (q *WaitQueue) Clear() {
	for q.first != nil {
		q.unlink(q.first)
	}
}

func (q *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for p := q.first; p != nil; p = p.qsuc {
		sb.WriteString(p.String())
		if p.qsuc != nil {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// link inserts p after pred; a nil pred inserts at the front.
func (q *WaitQueue) link(p, pred *Process) {
	p.queue = q
	p.qpred = pred
	if pred == nil {
		p.qsuc = q.first
		q.first = p
	} else {
		p.qsuc = pred.qsuc
		pred.qsuc = p
	}
	if p.qsuc == nil {
		q.last = p
	} else {
		p.qsuc.qpred = p
	}
	q.n++
}

func (q *WaitQueue) unlink(p *Process) {
	if p.qpred == nil {
		q.first = p.qsuc
	} else {
		p.qpred.qsuc = p.qsuc
	}
	if p.qsuc == nil {
		q.last = p.qpred
	} else {
		p.qsuc.qpred = p.qpred
	}
	p.qpred, p.qsuc, p.queue = nil, nil, nil
	q.n--
}

// Into puts p at the back of q, leaving any queue it was in.
func (p *Process) Into(q *WaitQueue) { q.Enqueue(p) }

// Out removes p from its queue. It is a no-op when p is in no queue.
func (p *Process) Out() {
	if p.queue != nil {
		p.queue.unlink(p)
	}
}

// Follow puts p right after x in x's queue. If x is in no queue, p just
// leaves its own queue.
func (p *Process) Follow(x *Process) {
	p.Out()
	if x == nil || x.queue == nil || x == p {
		return
	}
	x.queue.link(p, x)
}

// Precede puts p right before x in x's queue. If x is in no queue, p just
// leaves its own queue.
func (p *Process) Precede(x *Process) {
	p.Out()
	if x == nil || x.queue == nil || x == p {
		return
	}
	x.queue.link(p, x.qpred)
}

// Queue returns the queue p is waiting in, or nil.
func (p *Process) Queue() *WaitQueue { return p.queue }

// Suc returns the process behind p in its queue, or nil.
func (p *Process) Suc() *Process { return p.qsuc }

// Pred returns the process in front of p in its queue, or nil.
func (p *Process) Pred() *Process { return p.qpred }
