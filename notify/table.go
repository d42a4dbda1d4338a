package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
)

// TableSink persists user notifications to Azure Table Storage, one row per
// notification partitioned by recipient.
type TableSink struct {
	table *aztables.Client
}

// NewTableSink creates a sink writing to the given table.
func NewTableSink(connStr, table string) (*TableSink, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &TableSink{table: svc.NewClient(table)}, nil
}

type notificationEntity struct {
	aztables.Entity
	Kind      string `json:"Kind"`
	Message   string `json:"Message"`
	Reference string `json:"Reference"`
	CreatedAt string `json:"CreatedAt"`
}

// Notify stores one notification row for the user.
func (s *TableSink) Notify(ctx context.Context, userID, kind, message, reference string) error {
	ent := notificationEntity{
		Entity:    aztables.Entity{PartitionKey: userID, RowKey: uuid.NewString()},
		Kind:      kind,
		Message:   message,
		Reference: reference,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.table.AddEntity(ctx, data, nil)
	return err
}
