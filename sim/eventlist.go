package sim

// eventList is the time-ordered, circular, doubly linked list of scheduled
// processes. The sentinel header has event time -1 and links to itself when
// the list is empty. Entries are non-decreasing in event time from head to
// tail; among equal times the earlier entry runs first.
//
// A process is scheduled exactly when its suc link is non-nil.
type eventList struct {
	head Process
}

func newEventList() *eventList {
	l := &eventList{}
	l.head.name = "sqs"
	l.head.evTime = -1
	l.head.pred = &l.head
	l.head.suc = &l.head
	return l
}

// sentinel returns the list header, usable as an insertion position.
func (l *eventList) sentinel() *Process { return &l.head }

func (l *eventList) empty() bool { return l.head.suc == &l.head }

// first returns the current process, or nil when nothing is scheduled.
func (l *eventList) first() *Process {
	if l.empty() {
		return nil
	}
	return l.head.suc
}

// now is the simulated time: the event time of the head, or 0.
func (l *eventList) now() float64 {
	if l.empty() {
		return 0
	}
	return l.head.suc.evTime
}

// next returns the entry after p, or nil when p is the tail.
func (l *eventList) next(p *Process) *Process {
	if p.suc == &l.head {
		return nil
	}
	return p.suc
}

// insertAfter splices the unscheduled process p in right after pred.
func (l *eventList) insertAfter(p, pred *Process) {
	if p.suc != nil {
		panic("insertAfter: process " + p.name + " is already scheduled")
	}
	if pred.suc == nil {
		panic("insertAfter: position " + pred.name + " is not in the event list")
	}
	p.pred = pred
	p.suc = pred.suc
	pred.suc.pred = p
	pred.suc = p
}

// remove splices p out of the list. It is a no-op for nil or unscheduled p.
func (l *eventList) remove(p *Process) {
	if p == nil || p.suc == nil || p == &l.head {
		return
	}
	p.pred.suc = p.suc
	p.suc.pred = p.pred
	p.pred = nil
	p.suc = nil
}

// position finds the entry after which a process with event time t goes.
// Scanning runs backward from the tail past every entry later than t; with
// prior it also passes entries equal to t, so the new entry precedes them.
func (l *eventList) position(t float64, prior bool) *Process {
	p := l.head.pred
	for p.evTime > t {
		p = p.pred
	}
	if prior {
		for p != &l.head && p.evTime == t {
			p = p.pred
		}
	}
	return p
}

// len counts the scheduled processes.
func (l *eventList) len() int {
	n := 0
	for p := l.head.suc; p != &l.head; p = p.suc {
		n++
	}
	return n
}

// clear unschedules every entry.
func (l *eventList) clear() {
	for p := l.first(); p != nil; p = l.first() {
		l.remove(p)
	}
}
