package ubeu

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
)

// BatchJobStatus represents the status of a batch job
type BatchJobStatus string

const (
	BatchStatusPending    BatchJobStatus = "pending"
	BatchStatusInProgress BatchJobStatus = "in_progress"
	BatchStatusCompleted  BatchJobStatus = "completed"
	BatchStatusFailed     BatchJobStatus = "failed"
	BatchStatusCancelled  BatchJobStatus = "cancelled"
	BatchStatusTimeout    BatchJobStatus = "timeout"
)

// Transaction states reported by the batch status endpoint
const (
	batchTxProcessing = "processing"
	batchTxCompleted  = "completed"
	batchTxFailed     = "failed"
)

// Polling configuration
const (
	batchInitialInterval = 1 * time.Second
	batchMaxInterval     = 5 * time.Second
	batchBackoffFactor   = 1.5
)

type batchFetcher func(ctx context.Context, transactionID string) (*BatchStatus, error)

// BatchJob tracks the transactions of an OpenID4 batch issuance until the
// platform reports each of them completed or failed
type BatchJob struct {
	id        string
	txIDs     []string
	fetch     batchFetcher
	emit      func(events.Type, interface{})
	startTime time.Time

	interval    time.Duration
	maxInterval time.Duration

	// Status tracking
	status     atomic.Value // BatchJobStatus
	checkCount atomic.Int32

	// Cancellation
	cancelled atomic.Bool
	cancelMu  sync.Mutex
	cancel    context.CancelFunc

	mu        sync.RWMutex
	endTime   *time.Time
	lastCheck time.Time
	lastError error
	results   map[string]*BatchStatus
}

func newBatchJob(issuance *BatchIssuance, fetch batchFetcher, emit func(events.Type, interface{})) *BatchJob {
	job := &BatchJob{
		id:          fmt.Sprintf("batch-%d", time.Now().UnixNano()),
		txIDs:       append([]string(nil), issuance.TransactionIDs...),
		fetch:       fetch,
		emit:        emit,
		startTime:   time.Now(),
		interval:    batchInitialInterval,
		maxInterval: batchMaxInterval,
		results:     make(map[string]*BatchStatus, len(issuance.TransactionIDs)),
	}
	job.status.Store(BatchStatusPending)
	return job
}

// ID returns the job ID
func (j *BatchJob) ID() string {
	return j.id
}

// TransactionIDs returns the tracked transaction identifiers
func (j *BatchJob) TransactionIDs() []string {
	return append([]string(nil), j.txIDs...)
}

// Status returns the current status
func (j *BatchJob) Status() BatchJobStatus {
	return j.status.Load().(BatchJobStatus)
}

// Results returns the last known status of every finished transaction
func (j *BatchJob) Results() map[string]*BatchStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make(map[string]*BatchStatus, len(j.results))
	for k, v := range j.results {
		out[k] = v
	}
	return out
}

// Wait polls until every transaction finished, the timeout elapses, ctx is
// done or the job is cancelled. It returns ErrBatchFailed when a transaction
// failed.
func (j *BatchJob) Wait(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	j.cancelMu.Lock()
	j.cancel = cancel
	j.cancelMu.Unlock()

	if j.cancelled.Load() {
		return ErrBatchCancelled
	}
	j.status.Store(BatchStatusInProgress)

	currentInterval := j.interval
	ticker := time.NewTicker(currentInterval)
	defer ticker.Stop()

	for {
		done, err := j.check(waitCtx)
		switch {
		case err != nil && waitCtx.Err() == nil && !IsRetryable(err):
			j.finish(BatchStatusFailed, err)
			return err
		case err == nil && done:
			return j.complete()
		}

		// Implement exponential backoff
		if j.checkCount.Load()%3 == 0 && currentInterval < j.maxInterval {
			currentInterval = time.Duration(float64(currentInterval) * batchBackoffFactor)
			if currentInterval > j.maxInterval {
				currentInterval = j.maxInterval
			}
			ticker.Reset(currentInterval)
		}

		select {
		case <-waitCtx.Done():
			// Check if it was cancelled vs timeout
			if j.cancelled.Load() {
				j.finish(BatchStatusCancelled, nil)
				return ErrBatchCancelled
			}
			if err := ctx.Err(); err != nil {
				j.finish(BatchStatusCancelled, err)
				return err
			}
			j.finish(BatchStatusTimeout, ErrBatchTimeout)
			return ErrBatchTimeout

		case <-ticker.C:
		}
	}
}

// Cancel stops a running Wait. A job cancelled before Wait never polls.
func (j *BatchJob) Cancel() {
	j.cancelled.Store(true)

	j.cancelMu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.cancelMu.Unlock()

	if j.Status() == BatchStatusPending {
		j.finish(BatchStatusCancelled, nil)
	}
}

// check polls every unfinished transaction once and reports whether all finished
func (j *BatchJob) check(ctx context.Context) (bool, error) {
	j.checkCount.Add(1)

	j.mu.Lock()
	j.lastCheck = time.Now()
	j.mu.Unlock()

	allDone := true
	for _, txID := range j.txIDs {
		if j.finished(txID) {
			continue
		}

		status, err := j.fetch(ctx, txID)
		if err != nil {
			j.setError(err)
			return false, errors.Wrapf(err, "failed to check batch transaction %s", txID)
		}

		if status.Status != batchTxCompleted && status.Status != batchTxFailed {
			allDone = false
			continue
		}

		j.mu.Lock()
		j.results[txID] = status
		j.mu.Unlock()

		if j.emit != nil {
			for _, r := range status.Results {
				if r.Status == batchTxCompleted {
					j.emit(events.CredentialIssued, r)
				}
			}
		}
	}
	return allDone, nil
}

// complete settles a job whose transactions all finished
func (j *BatchJob) complete() error {
	failed := j.failedCount()
	if failed > 0 {
		err := errors.Wrapf(ErrBatchFailed, "%d of %d transactions failed", failed, len(j.txIDs))
		j.finish(BatchStatusFailed, err)
		return err
	}
	j.finish(BatchStatusCompleted, nil)
	return nil
}

func (j *BatchJob) finished(txID string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, ok := j.results[txID]
	return ok
}

func (j *BatchJob) failedCount() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := 0
	for _, r := range j.results {
		if r.Status == batchTxFailed {
			n++
		}
	}
	return n
}

func (j *BatchJob) finish(status BatchJobStatus, err error) {
	j.status.Store(status)

	j.mu.Lock()
	now := time.Now()
	j.endTime = &now
	if err != nil {
		j.lastError = err
	}
	j.mu.Unlock()
}

func (j *BatchJob) setError(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastError = err
}

// GetMetrics returns job metrics
func (j *BatchJob) GetMetrics() BatchJobMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	duration := time.Since(j.startTime)
	if j.endTime != nil {
		duration = j.endTime.Sub(j.startTime)
	}

	completed, failed := 0, 0
	for _, r := range j.results {
		if r.Status == batchTxFailed {
			failed++
		} else {
			completed++
		}
	}

	return BatchJobMetrics{
		ID:               j.id,
		Status:           string(j.Status()),
		StartTime:        j.startTime,
		EndTime:          j.endTime,
		Duration:         duration,
		TransactionCount: len(j.txIDs),
		CompletedCount:   completed,
		FailedCount:      failed,
		CheckCount:       int(j.checkCount.Load()),
		LastCheck:        j.lastCheck,
		LastError:        j.lastError,
	}
}

// BatchJobMetrics contains metrics about a batch job
type BatchJobMetrics struct {
	ID               string        `json:"id"`
	Status           string        `json:"status"`
	StartTime        time.Time     `json:"startTime"`
	EndTime          *time.Time    `json:"endTime,omitempty"`
	Duration         time.Duration `json:"duration"`
	TransactionCount int           `json:"transactionCount"`
	CompletedCount   int           `json:"completedCount"`
	FailedCount      int           `json:"failedCount"`
	CheckCount       int           `json:"checkCount"`
	LastCheck        time.Time     `json:"lastCheck"`
	LastError        error         `json:"lastError,omitempty"`
}
