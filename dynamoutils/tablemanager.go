package dynamoutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/config"
	"dogotel/utils"
)

const (
	RoomBookingsIndex = "RoomBookingsIndex"
	UserBookingsIndex = "UserBookingsIndex"
	RoomReviewsIndex  = "RoomReviewsIndex"
	UserReviewsIndex  = "UserReviewsIndex"
)

const (
	DiningKey  = "dining_id"
	ServiceKey = "service_id"
	UserKey    = "email"
)

// API is the part of *dynamodb.Client used by the DAOs and the table manager.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type TableDefinition struct {
	TableName string

	PartitionKey         AttributeDefinition
	SortKey              AttributeDefinition
	AdditionalAttributes []AttributeDefinition

	SecondaryIndexes []SecondaryIndexDefinition
}

type SecondaryIndexDefinition struct {
	IndexName string

	PartitionKeyName string
	SortKeyName      string
}

type AttributeDefinition struct {
	Name       string
	ScalarType types.ScalarAttributeType
}

// CreateClient returns a DynamoDB client for the configured region. When an
// endpoint is set (DynamoDB Local, VPC endpoint) requests go there instead, with
// static credentials for local endpoints.
func CreateClient(awsCfg aws.Config, cfg config.AWSConfig) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		if cfg.Region == "localhost" {
			o.Credentials = credentials.NewStaticCredentialsProvider("b59xng", "b2sc6o", "")
		}
	})
}

func CreateTable(ctx context.Context, client *dynamodb.Client, tableDefinition TableDefinition) (*types.TableDescription, error) {
	attributeDefinitions := []types.AttributeDefinition{{
		AttributeName: aws.String(tableDefinition.PartitionKey.Name),
		AttributeType: tableDefinition.PartitionKey.ScalarType,
	}}
	if tableDefinition.SortKey.Name != "" {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(tableDefinition.SortKey.Name),
			AttributeType: tableDefinition.SortKey.ScalarType,
		})
	}

	for _, additionalAttribute := range tableDefinition.AdditionalAttributes {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(additionalAttribute.Name),
			AttributeType: additionalAttribute.ScalarType,
		})
	}

	var globalSecondaryIndexes []types.GlobalSecondaryIndex
	for _, index := range tableDefinition.SecondaryIndexes {
		globalSecondaryIndexes = append(globalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(index.IndexName),
			KeySchema:  createKeySchema(index.PartitionKeyName, index.SortKeyName),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	table, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:              aws.String(tableDefinition.TableName),
		AttributeDefinitions:   attributeDefinitions,
		KeySchema:              createKeySchema(tableDefinition.PartitionKey.Name, tableDefinition.SortKey.Name),
		BillingMode:            types.BillingModePayPerRequest,
		GlobalSecondaryIndexes: globalSecondaryIndexes,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't create table %v: %w", tableDefinition.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableDefinition.TableName)}, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("wait for table %v failed: %w", tableDefinition.TableName, err)
	}
	return table.TableDescription, nil
}

func GetExistingTableNames(ctx context.Context, client *dynamodb.Client) ([]string, error) {
	var tableNames []string
	paginator := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		tableNames = append(tableNames, page.TableNames...)
	}
	return tableNames, nil
}

func DeleteTable(ctx context.Context, client *dynamodb.Client, tableName string) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(tableName)})
	if err != nil {
		return fmt.Errorf("could not delete table %v: %w", tableName, err)
	}
	return nil
}

func RoomsTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"room_id", types.ScalarAttributeTypeS},
	}
}

func BookingsTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"booking_id", types.ScalarAttributeTypeS},
		AdditionalAttributes: []AttributeDefinition{
			{Name: "room_id", ScalarType: types.ScalarAttributeTypeS},
			{Name: "user_id", ScalarType: types.ScalarAttributeTypeS},
			{Name: "created_at", ScalarType: types.ScalarAttributeTypeS},
		},
		SecondaryIndexes: []SecondaryIndexDefinition{
			{IndexName: RoomBookingsIndex, PartitionKeyName: "room_id", SortKeyName: "created_at"},
			{IndexName: UserBookingsIndex, PartitionKeyName: "user_id", SortKeyName: "created_at"},
		},
	}
}

func ReviewsTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"review_id", types.ScalarAttributeTypeS},
		AdditionalAttributes: []AttributeDefinition{
			{Name: "room_id", ScalarType: types.ScalarAttributeTypeS},
			{Name: "user_id", ScalarType: types.ScalarAttributeTypeS},
			{Name: "created_at", ScalarType: types.ScalarAttributeTypeS},
		},
		SecondaryIndexes: []SecondaryIndexDefinition{
			{IndexName: RoomReviewsIndex, PartitionKeyName: "room_id", SortKeyName: "created_at"},
			{IndexName: UserReviewsIndex, PartitionKeyName: "user_id", SortKeyName: "created_at"},
		},
	}
}

func RoomLocksTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"room_id", types.ScalarAttributeTypeS},
	}
}

func DiningTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{DiningKey, types.ScalarAttributeTypeS},
	}
}

func ServicesTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{ServiceKey, types.ScalarAttributeTypeS},
	}
}

func UsersTable(tableName string) TableDefinition {
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{UserKey, types.ScalarAttributeTypeS},
	}
}

func AllTables(tables config.TablesConfig) []TableDefinition {
	return []TableDefinition{
		RoomsTable(tables.Rooms),
		BookingsTable(tables.Bookings),
		ReviewsTable(tables.Reviews),
		RoomLocksTable(tables.RoomLocks),
		DiningTable(tables.Dining),
		ServicesTable(tables.Services),
		UsersTable(tables.Users),
	}
}

// BatchPutItems writes items in batches of 25 on parallel workers. Items the
// service leaves unprocessed are resubmitted with backoff.
func BatchPutItems(ctx context.Context, client API, tableName string, items []map[string]types.AttributeValue) error {
	var writeRequests []types.WriteRequest
	for _, item := range items {
		writeRequests = append(writeRequests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	parallelJobExecutor := utils.NewSimpleParallelJobExecutor(getConcurrentLoadingUnits())
	parallelJobExecutor.Start()

	for _, batch := range utils.Chunk(writeRequests, 25) {
		parallelJobExecutor.SubmitJob(func() error {
			return writeBatch(ctx, client, tableName, batch)
		})
	}

	if err := parallelJobExecutor.Stop(); err != nil {
		return fmt.Errorf("failed to load %v: %w", tableName, err)
	}
	slog.Info("batch load completed", "table", tableName, "items", len(items))
	return nil
}

var errUnprocessedItems = errors.New("unprocessed items left")

func writeBatch(ctx context.Context, client API, tableName string, batch []types.WriteRequest) error {
	pending := batch
	retrier := utils.NewRetrier[struct{}](utils.NewExponentialBackoffStrategy(8, 50*time.Millisecond, 0.1, 2*time.Second)).
		RetryOnly(func(err error) bool { return errors.Is(err, errUnprocessedItems) })

	_, err := retrier.DoWithReturn(ctx, func() (struct{}, error) {
		output, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{tableName: pending},
		})
		if err != nil {
			return struct{}{}, err
		}
		pending = output.UnprocessedItems[tableName]
		if len(pending) > 0 {
			return struct{}{}, errUnprocessedItems
		}
		return struct{}{}, nil
	})
	return err
}

func createKeySchema(partitionKeyName string, sortKeyName string) []types.KeySchemaElement {
	schema := []types.KeySchemaElement{{
		AttributeName: aws.String(partitionKeyName),
		KeyType:       types.KeyTypeHash,
	}}

	if sortKeyName != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(sortKeyName),
			KeyType:       types.KeyTypeRange,
		})
	}

	return schema
}

func getConcurrentLoadingUnits() int {
	concurrentLoadingUnits := 10
	if env := os.Getenv("CONCURRENT_LOADING_UNITS"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			concurrentLoadingUnits = parsed
		} else {
			slog.Warn("ignoring malformed CONCURRENT_LOADING_UNITS", "value", env)
		}
	}
	return concurrentLoadingUnits
}
