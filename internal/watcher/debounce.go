package watcher

import (
	"sync"
	"time"

	"agentsync/internal/model"
)

// Debounce coalesces bursts of events per path, emitting only the last event
// once the path has been quiet for the given delay. The output channel closes
// after the input closes and every pending timer has fired.
func Debounce(inCh <-chan model.FileEvent, delay time.Duration) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	go func() {
		defer close(outCh)

		var mu sync.Mutex
		var wg sync.WaitGroup
		timers := make(map[string]*time.Timer)
		events := make(map[string]model.FileEvent)

		for event := range inCh {
			mu.Lock()
			path := event.Path

			if t, ok := timers[path]; ok && t.Stop() {
				wg.Done()
			}

			events[path] = event

			wg.Add(1)
			timers[path] = time.AfterFunc(delay, func() {
				defer wg.Done()

				mu.Lock()
				ev, ok := events[path]
				delete(timers, path)
				delete(events, path)
				mu.Unlock()

				if ok {
					outCh <- ev
				}
			})
			mu.Unlock()
		}

		wg.Wait()
	}()

	return outCh
}
