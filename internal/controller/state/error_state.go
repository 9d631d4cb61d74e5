// Package state holds the controller's mutable telescope position/status
// and active-error tracking, each guarded by its own mutex so the dispatch
// loop, safety supervisor, and motion executor can read/write concurrently
// without a shared lock.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

type errorLogEntry struct {
	at     time.Time
	code   telescope.ErrorCode
	detail string
}

// ErrorState tracks which error codes are currently active, plus a history
// log of every activation for diagnostics. Clears are not logged.
type ErrorState struct {
	mu     sync.Mutex
	active map[telescope.ErrorCode]string
	log    []errorLogEntry
}

func NewErrorState() *ErrorState {
	return &ErrorState{active: make(map[telescope.ErrorCode]string)}
}

// AddError records code as active. Adding an already-active code overwrites
// its detail but does not re-log a new activation.
func (e *ErrorState) AddError(code telescope.ErrorCode, detail string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, alreadyActive := e.active[code]
	e.active[code] = detail
	if !alreadyActive {
		e.log = append(e.log, errorLogEntry{time.Now(), code, detail})
	}
}

func (e *ErrorState) ClearError(code telescope.ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, code)
}

func (e *ErrorState) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = make(map[telescope.ErrorCode]string)
}

func (e *ErrorState) HasError() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active) > 0
}

// HasSafetyError reports whether any error in the 70-79 safety decade is
// active.
func (e *ErrorState) HasSafetyError() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for code := range e.active {
		if code >= 70 && code <= 79 {
			return true
		}
	}
	return false
}

func (e *ErrorState) ActiveCodes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	codes := make([]int, 0, len(e.active))
	for code := range e.active {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)
	return codes
}

func (e *ErrorState) Detail(code telescope.ErrorCode) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	detail, ok := e.active[code]
	return detail, ok
}
