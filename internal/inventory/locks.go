package inventory

import "sync"

// FlightLocks hands out one mutex per flight so admissions on the same flight
// are serialized while different flights proceed in parallel.
type FlightLocks struct {
	mu    sync.Mutex
	locks map[int64]*flightLock
}

type flightLock struct {
	mu   sync.Mutex
	refs int
}

func NewFlightLocks() *FlightLocks {
	return &FlightLocks{locks: make(map[int64]*flightLock)}
}

// Lock blocks until the flight's mutex is held and returns its release func.
func (l *FlightLocks) Lock(flightID int64) func() {
	l.mu.Lock()
	fl, ok := l.locks[flightID]
	if !ok {
		fl = &flightLock{}
		l.locks[flightID] = fl
	}
	fl.refs++
	l.mu.Unlock()

	fl.mu.Lock()
	return func() {
		fl.mu.Unlock()

		l.mu.Lock()
		fl.refs--
		if fl.refs == 0 {
			delete(l.locks, flightID)
		}
		l.mu.Unlock()
	}
}
