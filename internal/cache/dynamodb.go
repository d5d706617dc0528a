package cache

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DefaultCacheID is the partition key of the single cache item.
const DefaultCacheID = "avatar"

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBBackend.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// cacheItem is the DynamoDB representation of a Record
type cacheItem struct {
	CacheID              string    `dynamodbav:"cacheId"`
	Session              string    `dynamodbav:"session,omitempty"`
	LastUploadedAvatarID string    `dynamodbav:"lastUploadedAvatarId,omitempty"`
	UpdatedAt            time.Time `dynamodbav:"updatedAt"`
}

// DynamoDBBackend stores the record as one item, for runs where the working
// directory does not survive between invocations (Lambda).
type DynamoDBBackend struct {
	client    DynamoDBAPI
	tableName string
	cacheID   string
}

// NewDynamoDBBackend creates a backend using the default AWS configuration
func NewDynamoDBBackend(ctx context.Context, tableName string) (*DynamoDBBackend, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewDynamoDBBackendWithClient(dynamodb.NewFromConfig(cfg), tableName, DefaultCacheID), nil
}

// NewDynamoDBBackendWithClient creates a backend around an existing client
func NewDynamoDBBackendWithClient(client DynamoDBAPI, tableName, cacheID string) *DynamoDBBackend {
	if cacheID == "" {
		cacheID = DefaultCacheID
	}
	return &DynamoDBBackend{
		client:    client,
		tableName: tableName,
		cacheID:   cacheID,
	}
}

func (b *DynamoDBBackend) Load(ctx context.Context) (Record, error) {
	result, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"cacheId": &types.AttributeValueMemberS{Value: b.cacheID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to get cache item: %w", err)
	}

	if result.Item == nil {
		return Record{}, fmt.Errorf("cache item %s/%s: %w", b.tableName, b.cacheID, fs.ErrNotExist)
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal cache item: %w", err)
	}

	return Record{
		Session:              item.Session,
		LastUploadedAvatarID: item.LastUploadedAvatarID,
	}, nil
}

func (b *DynamoDBBackend) Save(ctx context.Context, record Record) error {
	item, err := attributevalue.MarshalMap(cacheItem{
		CacheID:              b.cacheID,
		Session:              record.Session,
		LastUploadedAvatarID: record.LastUploadedAvatarID,
		UpdatedAt:            time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache item: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put cache item: %w", err)
	}

	return nil
}
