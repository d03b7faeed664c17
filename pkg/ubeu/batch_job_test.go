package ubeu

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubeu-platform/ubeu-go/internal/events"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// scriptedFetcher replays statuses per transaction, repeating the last one
type scriptedFetcher struct {
	mu     sync.Mutex
	script map[string][]string
	calls  map[string]int
	err    error
}

func (f *scriptedFetcher) fetch(_ context.Context, txID string) (*BatchStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	steps := f.script[txID]
	i := f.calls[txID]
	if i >= len(steps) {
		i = len(steps) - 1
	}
	f.calls[txID]++

	status := &BatchStatus{Status: steps[i]}
	if steps[i] == batchTxCompleted {
		status.Results = []BatchResult{{RecipientID: "r-" + txID, Status: batchTxCompleted}}
	}
	return status, nil
}

func (f *scriptedFetcher) callsFor(txID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[txID]
}

func newTestBatchJob(txIDs []string, fetch batchFetcher, emit func(events.Type, interface{})) *BatchJob {
	job := newBatchJob(&BatchIssuance{TransactionIDs: txIDs}, fetch, emit)
	job.interval = time.Millisecond
	job.maxInterval = 5 * time.Millisecond
	return job
}

func TestBatchJob_CompletesWhenAllTransactionsFinish(t *testing.T) {
	fetcher := &scriptedFetcher{script: map[string][]string{
		"tx-1": {batchTxProcessing, batchTxCompleted},
		"tx-2": {batchTxProcessing, batchTxProcessing, batchTxCompleted},
	}}

	var issued atomic.Int32
	job := newTestBatchJob([]string{"tx-1", "tx-2"}, fetcher.fetch, func(typ events.Type, _ interface{}) {
		if typ == events.CredentialIssued {
			issued.Add(1)
		}
	})
	assert.Equal(t, BatchStatusPending, job.Status())

	require.NoError(t, job.Wait(context.Background(), time.Second))
	assert.Equal(t, BatchStatusCompleted, job.Status())
	assert.Equal(t, int32(2), issued.Load())

	// finished transactions are not polled again
	assert.Equal(t, 2, fetcher.callsFor("tx-1"))
	assert.Equal(t, 3, fetcher.callsFor("tx-2"))

	metrics := job.GetMetrics()
	assert.Equal(t, 2, metrics.TransactionCount)
	assert.Equal(t, 2, metrics.CompletedCount)
	assert.Equal(t, 0, metrics.FailedCount)
	assert.Equal(t, 3, metrics.CheckCount)
	assert.NotNil(t, metrics.EndTime)
	assert.Len(t, job.Results(), 2)
}

func TestBatchJob_FailedTransaction(t *testing.T) {
	fetcher := &scriptedFetcher{script: map[string][]string{
		"tx-1": {batchTxCompleted},
		"tx-2": {batchTxFailed},
	}}
	job := newTestBatchJob([]string{"tx-1", "tx-2"}, fetcher.fetch, nil)

	err := job.Wait(context.Background(), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, BatchStatusFailed, job.Status())
	assert.Equal(t, 1, job.GetMetrics().FailedCount)
}

func TestBatchJob_Timeout(t *testing.T) {
	fetcher := &scriptedFetcher{script: map[string][]string{"tx-1": {batchTxProcessing}}}
	job := newTestBatchJob([]string{"tx-1"}, fetcher.fetch, nil)

	err := job.Wait(context.Background(), 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrBatchTimeout)
	assert.Equal(t, BatchStatusTimeout, job.Status())
}

func TestBatchJob_CancelWhileWaiting(t *testing.T) {
	fetcher := &scriptedFetcher{script: map[string][]string{"tx-1": {batchTxProcessing}}}
	job := newTestBatchJob([]string{"tx-1"}, fetcher.fetch, nil)

	go func() {
		time.Sleep(20 * time.Millisecond)
		job.Cancel()
	}()

	err := job.Wait(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, ErrBatchCancelled)
	assert.Equal(t, BatchStatusCancelled, job.Status())
}

func TestBatchJob_CancelBeforeWait(t *testing.T) {
	fetcher := &scriptedFetcher{script: map[string][]string{"tx-1": {batchTxCompleted}}}
	job := newTestBatchJob([]string{"tx-1"}, fetcher.fetch, nil)

	job.Cancel()
	assert.Equal(t, BatchStatusCancelled, job.Status())
	assert.ErrorIs(t, job.Wait(context.Background(), time.Second), ErrBatchCancelled)
	assert.Equal(t, 0, fetcher.callsFor("tx-1"))
}

func TestBatchJob_NonRetryableErrorStops(t *testing.T) {
	fetcher := &scriptedFetcher{err: ErrNotFound}
	job := newTestBatchJob([]string{"tx-1"}, fetcher.fetch, nil)

	err := job.Wait(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, BatchStatusFailed, job.Status())
	assert.ErrorIs(t, job.GetMetrics().LastError, ErrNotFound)
}

func TestBatchJob_RetryableErrorKeepsPolling(t *testing.T) {
	var calls atomic.Int32
	fetch := func(_ context.Context, txID string) (*BatchStatus, error) {
		if calls.Add(1) < 3 {
			return nil, ErrServerError
		}
		return &BatchStatus{Status: batchTxCompleted}, nil
	}
	job := newTestBatchJob([]string{"tx-1"}, fetch, nil)

	require.NoError(t, job.Wait(context.Background(), time.Second))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBatchJob_RequestTimeoutStatusStops(t *testing.T) {
	cause := types.NewError(CodeRequestFailed, "Request failed", &HTTPError{StatusCode: 408, Err: ErrTimeout})
	fetcher := &scriptedFetcher{err: cause}
	job := newTestBatchJob([]string{"tx-1"}, fetcher.fetch, nil)

	err := job.Wait(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrBatchTimeout)
	assert.Equal(t, BatchStatusFailed, job.Status())
	assert.Equal(t, 1, job.GetMetrics().CheckCount)
}
