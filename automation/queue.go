package automation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

// QueueEngine forwards automation triggers to an Azure Storage queue, one
// JSON message per trigger, for the rule-evaluation workers to consume.
type QueueEngine struct {
	queue *azqueue.QueueClient
}

// NewQueueEngine creates an engine publishing to the given queue.
func NewQueueEngine(connStr, queue string) (*QueueEngine, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: time.Second * 30,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	qc, err := azqueue.NewQueueClientFromConnectionString(connStr, queue, &opts)
	if err != nil {
		return nil, err
	}
	return &QueueEngine{queue: qc}, nil
}

type triggerMessage struct {
	Trigger   string            `json:"trigger"`
	Payload   map[string]string `json:"payload,omitempty"`
	ActorID   string            `json:"actorId,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Fire enqueues the trigger for asynchronous rule evaluation.
func (e *QueueEngine) Fire(ctx context.Context, trigger string, payload map[string]string, actorID string) error {
	msg := triggerMessage{
		Trigger:   trigger,
		Payload:   payload,
		ActorID:   actorID,
		Timestamp: time.Now().UnixNano(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = e.queue.EnqueueMessage(ctx, string(data), nil)
	return err
}
