package service

import "sync"

// appointmentLocks serializes the read-validate-write cycle per appointment.
// Two concurrent submissions against the same appointment could otherwise both
// pass the remaining-balance guard on the same snapshot and jointly overpay.
type appointmentLocks struct {
	mu    sync.Mutex
	locks map[string]*appointmentLock
}

type appointmentLock struct {
	mu   sync.Mutex
	refs int
}

func newAppointmentLocks() *appointmentLocks {
	return &appointmentLocks{locks: map[string]*appointmentLock{}}
}

// Lock acquires the lock for one appointment and returns its release func.
// Entries are reference-counted and removed once the last holder releases.
func (l *appointmentLocks) Lock(appointmentID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[appointmentID]
	if !ok {
		entry = &appointmentLock{}
		l.locks[appointmentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, appointmentID)
		}
		l.mu.Unlock()
	}
}
