// SPDX-License-Identifier: MPL-2.0

package task

import (
	"fmt"
	"sync"
)

// Group members run with the group's own context (each member instance
// gets its private copy) and an empty invocation; argument plumbing
// between a group and its members is deliberately out of scope.

// runSerial executes members one at a time, in declared order, aborting
// on the first returned error. A member's non-zero exit code is not an
// error and does not stop the sequence.
func (in *Instance) runSerial(inv *Invocation) (*Result, error) {
	for _, member := range in.typ.Serial {
		minst := NewInstance(member, member.Name, in.ctx)
		if _, err := minst.Run(minst.blankInvocation()); err != nil {
			return nil, fmt.Errorf("task %q: %w", minst.name, err)
		}
	}
	return NewSuccessResult(), nil
}

// runParallel launches every member before awaiting any, bounded by
// MaxWorkers when set, and blocks until all members have been observed.
// The first error encountered is returned after the join barrier; there
// is no cross-member cancellation.
func (in *Instance) runParallel(inv *Invocation) (*Result, error) {
	var sem chan struct{}
	if in.typ.MaxWorkers > 0 {
		sem = make(chan struct{}, in.typ.MaxWorkers)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, member := range in.typ.Parallel {
		minst := NewInstance(member, member.Name, in.ctx)
		wg.Add(1)
		go func(mi *Instance) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if _, err := mi.Run(mi.blankInvocation()); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("task %q: %w", mi.name, err)
				}
				mu.Unlock()
			}
		}(minst)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return NewSuccessResult(), nil
}
