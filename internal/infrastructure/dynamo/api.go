package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of *dynamodb.Client the repos use.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// sortableTimeLayout is fixed width, so string order on the created_at sort
// key matches time order. RFC3339Nano trims trailing zeros and does not.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalItem marshals v and rewrites created_at in sortableTimeLayout.
// The default decoder still parses it as RFC3339.
func marshalItem(v interface{}) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	if av, ok := item[fieldCreatedAt].(*types.AttributeValueMemberS); ok {
		t, err := time.Parse(time.RFC3339Nano, av.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal item: %s: %w", fieldCreatedAt, err)
		}
		item[fieldCreatedAt] = &types.AttributeValueMemberS{Value: t.UTC().Format(sortableTimeLayout)}
	}
	return item, nil
}

// putNew writes v, refusing to overwrite an item with the same primary key.
func putNew(ctx context.Context, client API, table, pk string, v interface{}) error {
	item, err := marshalItem(v)
	if err != nil {
		return err
	}
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String(fmt.Sprintf(conditionNewPrimaryKey, pk)),
	})
	return err
}

// queryLatestByUser reads the user_id-created_at GSI newest first.
func queryLatestByUser(ctx context.Context, client API, table, userID string, limit int32, out interface{}) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(indexUserCreatedAt),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	res, err := client.Query(ctx, input)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalListOfMaps(res.Items, out)
}
