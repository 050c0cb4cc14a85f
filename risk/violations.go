package risk

import (
	"sync"
	"time"

	"github.com/mt5crs/riskcore/alert"
)

// ViolationType identifies which risk rule rejected a signal.
type ViolationType string

const (
	ViolationOrderRate    ViolationType = "ORDER_RATE_EXCEEDED"
	ViolationPositionSize ViolationType = "POSITION_SIZE_EXCEEDED"
	ViolationDailyLoss    ViolationType = "DAILY_LOSS_EXCEEDED"
	ViolationReconciler   ViolationType = "RECONCILER_DEGRADED"
)

// Violation is one recorded risk rejection.
type Violation struct {
	Severity alert.Severity
	Type     ViolationType
	Message  string
	Time     time.Time
}

// ViolationLog is a fixed-capacity ring over recent violations. A
// long-running monitor records violations indefinitely, so the log
// must stay bounded; the oldest entries are overwritten first.
type ViolationLog struct {
	mu    sync.Mutex
	buf   []Violation
	next  int
	count int
	total uint64
}

func NewViolationLog(capacity int) *ViolationLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &ViolationLog{buf: make([]Violation, capacity)}
}

func (l *ViolationLog) Add(v Violation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf[l.next] = v
	l.next = (l.next + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
	l.total++
}

// Len returns the number of retained entries, at most the capacity.
func (l *ViolationLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Total returns the number of violations ever recorded, including
// entries the ring has since overwritten.
func (l *ViolationLog) Total() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// All returns retained violations oldest first.
func (l *ViolationLog) All() []Violation {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Violation, 0, l.count)
	start := l.next - l.count
	if start < 0 {
		start += len(l.buf)
	}
	for i := 0; i < l.count; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}
	return out
}
