package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// ReadingRepo provides typed DynamoDB operations for the readings table.
type ReadingRepo struct {
	client    API
	tableName string
}

func NewReadingRepo(client API, tableName string) *ReadingRepo {
	return &ReadingRepo{client: client, tableName: tableName}
}

// Insert stores a copy of rd with a fresh ID and creation time and returns it.
func (r *ReadingRepo) Insert(ctx context.Context, rd *domain.Reading) (*domain.Reading, error) {
	rec := *rd
	rec.ReadingID = id.New()
	rec.CreatedAt = time.Now().UTC()
	if err := putNew(ctx, r.client, r.tableName, "reading_id", &rec); err != nil {
		return nil, fmt.Errorf("put reading: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

func (r *ReadingRepo) Get(ctx context.Context, readingID string) (*domain.Reading, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reading_id", readingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reading not found: %w", domain.ErrNotFound)
	}
	var rd domain.Reading
	if err := attributevalue.UnmarshalMap(out.Item, &rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

// ListByUser returns the user's latest readings, newest first.
func (r *ReadingRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Reading, error) {
	readings := []domain.Reading{}
	if err := queryLatestByUser(ctx, r.client, r.tableName, userID, int32(limit), &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
