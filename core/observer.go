package core

import "time"

// Observer receives extraction progress. Methods are called from the goroutine
// running the extraction, after the worker pool has drained.
type Observer interface {
	GroupSucceeded(id string, features int)
	GroupFailed(id string, err error)
	RunCompleted(groups, failed int, elapsed time.Duration)
}

// MultiObserver fans every event out to its members in order.
type MultiObserver []Observer

// GroupSucceeded implements Observer.
func (m MultiObserver) GroupSucceeded(id string, features int) {
	for _, o := range m {
		o.GroupSucceeded(id, features)
	}
}

// GroupFailed implements Observer.
func (m MultiObserver) GroupFailed(id string, err error) {
	for _, o := range m {
		o.GroupFailed(id, err)
	}
}

// RunCompleted implements Observer.
func (m MultiObserver) RunCompleted(groups, failed int, elapsed time.Duration) {
	for _, o := range m {
		o.RunCompleted(groups, failed, elapsed)
	}
}

// nopObserver discards every event.
type nopObserver struct{}

func (nopObserver) GroupSucceeded(string, int) {}
func (nopObserver) GroupFailed(string, error) {}
func (nopObserver) RunCompleted(int, int, time.Duration) {}
