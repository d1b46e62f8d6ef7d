package scratch

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// BatchOperation is the hydration of one document in a batch.
type BatchOperation struct {
	ID       string
	Document *Document
	// Reload forces a fresh fetch even when the document is hydrated.
	Reload   bool
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	Index    int
	ID       string
	Success  bool
	Error    error
	Duration time.Duration
}

// BatchExecutor hydrates documents with bounded concurrency.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the timeout of each operation.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are in operation order.
// Documents appearing twice share their hydration.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) []BatchResult {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Index = index
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results
}

func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	if operation.Document == nil {
		result.Error = ErrUnresolvedEndpoint

		return result
	}

	if operation.Reload {
		result.Error = operation.Document.Reload(ctx)
	} else {
		result.Error = operation.Document.Hydrate(ctx)
	}

	result.Success = result.Error == nil

	return result
}

// HydrateAll hydrates docs with at most concurrency fetches in flight and
// returns one result per document, in order.
func HydrateAll(ctx context.Context, docs []*Document, concurrency int) []BatchResult {
	operations := make([]BatchOperation, 0, len(docs))

	for _, doc := range docs {
		id := ""
		if doc != nil {
			id, _ = doc.Endpoint()
		}

		operations = append(operations, BatchOperation{ID: id, Document: doc})
	}

	return NewBatchExecutor(concurrency).Execute(ctx, operations)
}
