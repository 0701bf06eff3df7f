package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stress-shield-api/internal/config"
	"go.uber.org/zap"
)

// TableCreator is the part of *dynamodb.Client Bootstrap needs.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup; tables that already exist are skipped.
// When records live in Postgres only the account tables are created.
func Bootstrap(ctx context.Context, client TableCreator, tables config.DynamoTables, withRecords bool, logger *zap.Logger) {
	for _, input := range tableInputs(tables, withRecords) {
		createTable(ctx, client, input, logger)
	}
}

func tableInputs(tables config.DynamoTables, withRecords bool) []*dynamodb.CreateTableInput {
	inputs := []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(tables.Users),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("user_id"), strAttr("username"), strAttr("email"),
			},
			KeySchema: hashKey("user_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUsername, "username", ""),
				gsi(indexEmail, "email", ""),
			},
		},
		{
			TableName:            aws.String(tables.Sessions),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("session_id")},
			KeySchema:            hashKey("session_id"),
		},
	}
	if !withRecords {
		return inputs
	}
	return append(inputs,
		&dynamodb.CreateTableInput{
			TableName:   aws.String(tables.Readings),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("reading_id"), strAttr("user_id"), strAttr(fieldCreatedAt),
			},
			KeySchema: hashKey("reading_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUserCreatedAt, "user_id", fieldCreatedAt),
			},
		},
		&dynamodb.CreateTableInput{
			TableName:   aws.String(tables.Alerts),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("alert_id"), strAttr("user_id"), strAttr(fieldCreatedAt),
			},
			KeySchema: hashKey("alert_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUserCreatedAt, "user_id", fieldCreatedAt),
			},
		},
		&dynamodb.CreateTableInput{
			TableName:   aws.String(tables.Interventions),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("intervention_id"), strAttr("reading_id"), strAttr("user_id"), strAttr(fieldCreatedAt),
			},
			KeySchema: hashKey("intervention_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexReadingID, "reading_id", ""),
				gsi(indexUserCreatedAt, "user_id", fieldCreatedAt),
			},
		},
	)
}

func strAttr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

func hashKey(name string) []types.KeySchemaElement {
	return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashAttr, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashAttr), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client TableCreator, input *dynamodb.CreateTableInput, logger *zap.Logger) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			logger.Warn("could not create table", zap.String("table", *input.TableName), zap.Error(err))
		}
		return
	}
	logger.Info("created table", zap.String("table", *input.TableName))
}
