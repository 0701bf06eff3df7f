package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// InterventionRepo provides typed DynamoDB operations for the interventions table.
type InterventionRepo struct {
	client    API
	tableName string
}

func NewInterventionRepo(client API, tableName string) *InterventionRepo {
	return &InterventionRepo{client: client, tableName: tableName}
}

func (r *InterventionRepo) Insert(ctx context.Context, in *domain.Intervention) (*domain.Intervention, error) {
	rec := *in
	rec.InterventionID = id.New()
	rec.CreatedAt = time.Now().UTC()
	if err := putNew(ctx, r.client, r.tableName, "intervention_id", &rec); err != nil {
		return nil, fmt.Errorf("put intervention: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

// ListByReading returns the interventions recorded for a reading in insertion order.
func (r *InterventionRepo) ListByReading(ctx context.Context, readingID string) ([]domain.Intervention, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexReadingID),
		KeyConditionExpression: aws.String("reading_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: readingID},
		},
	})
	if err != nil {
		return nil, err
	}
	interventions := []domain.Intervention{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &interventions); err != nil {
		return nil, err
	}
	// ULIDs sort by creation time.
	sort.Slice(interventions, func(i, j int) bool {
		return interventions[i].InterventionID < interventions[j].InterventionID
	})
	return interventions, nil
}
