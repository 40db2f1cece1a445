package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoSnapshot is the persisted shape. ExpiresAt drives the table's TTL
// so abandoned gates age out without a reaper process.
type dynamoSnapshot struct {
	RunID     string    `dynamodbav:"runId"`
	Snapshot  *Snapshot `dynamodbav:"snapshot"`
	CreatedAt string    `dynamodbav:"createdAt"`
	ExpiresAt int64     `dynamodbav:"expiresAt"`
}

// DynamoResumeStore persists snapshots to DynamoDB. DeleteItem with
// ReturnValues=ALL_OLD makes Take atomic: concurrent resumes on one run id
// race on the delete and only the winner gets the old item back.
type DynamoResumeStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	logger    *logging.Logger
}

func NewDynamoResumeStore(client dynamoAPI, tableName string, ttl time.Duration, logger *logging.Logger) *DynamoResumeStore {
	if client == nil {
		panic("review: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("review: table name cannot be empty")
	}
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoResumeStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		logger:    logger,
	}
}

var _ ResumeStore = (*DynamoResumeStore)(nil)

func (s *DynamoResumeStore) Save(ctx context.Context, runID string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("review: snapshot cannot be nil")
	}
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(dynamoSnapshot{
		RunID:     runID,
		Snapshot:  snap,
		CreatedAt: now.Format(time.RFC3339Nano),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("review: failed to marshal snapshot: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		s.logger.Error("failed to persist resume snapshot", "error", err, "run_id", runID)
		return fmt.Errorf("review: failed to persist snapshot: %w", err)
	}
	return nil
}

func (s *DynamoResumeStore) Take(ctx context.Context, runID string) (*Snapshot, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          map[string]types.AttributeValue{"runId": &types.AttributeValueMemberS{Value: runID}},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		s.logger.Error("failed to take resume snapshot", "error", err, "run_id", runID)
		return nil, fmt.Errorf("review: failed to take snapshot: %w", err)
	}
	if len(out.Attributes) == 0 {
		return nil, ErrSnapshotNotFound
	}

	var record dynamoSnapshot
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return nil, fmt.Errorf("review: failed to decode snapshot: %w", err)
	}
	if record.Snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	// TTL deletion in DynamoDB lags; treat logically-expired rows as gone.
	if record.ExpiresAt > 0 && time.Now().UTC().Unix() > record.ExpiresAt {
		return nil, ErrSnapshotNotFound
	}
	return record.Snapshot, nil
}
