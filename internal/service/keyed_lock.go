package service

import (
	"fmt"
	"sync"
)

// keyedLock serialises read-modify-write sequences per (assignment, student)
// pair. Records for different students are independent, so no cross-student
// locking happens. Entries are retained for the process lifetime; the key
// space is bounded by enrolment.
type keyedLock struct {
	locks sync.Map
}

func (k *keyedLock) lock(assignmentID uint, studentID string) func() {
	key := fmt.Sprintf("%d/%s", assignmentID, studentID)
	value, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
