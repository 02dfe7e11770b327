package auth

import (
	"aggregat4/coffeeshop/internal/logging"
	"context"
	"sync"
	"time"
)

// RefreshJob keeps a key set warm so that requests after a key rotation do
// not pay for the fetch.
type RefreshJob struct {
	keys     *KeySet
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewRefreshJob(keys *KeySet, interval time.Duration) *RefreshJob {
	return &RefreshJob{
		keys:     keys,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *RefreshJob) Start() {
	go j.run()
}

// Stop ends the job and waits for it to exit. Stop must only be called after Start.
func (j *RefreshJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	<-j.done
}

func (j *RefreshJob) run() {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), j.interval)
			if err := j.keys.Refresh(ctx); err != nil {
				logging.Error(logger, "Failed to refresh signing keys: {Error}", err)
			}
			cancel()
		}
	}
}
