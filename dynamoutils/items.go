package dynamoutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/booking/model"
)

const currentStateAttribute = "current_state"

// BuildEntityPutItem stores the entity as JSON under current_state, next to
// its key and the attributes its indexes are built on.
func BuildEntityPutItem(keyName string, item model.QueryableItem) (map[string]types.AttributeValue, error) {
	state, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	putItem := map[string]types.AttributeValue{
		keyName:               &types.AttributeValueMemberS{Value: item.GetId()},
		currentStateAttribute: &types.AttributeValueMemberS{Value: string(state)},
	}
	for attributeName, attributeValue := range item.GetQueryableAttributes() {
		if attributeValue == "" {
			continue
		}
		putItem[attributeName] = &types.AttributeValueMemberS{Value: attributeValue}
	}
	return putItem, nil
}

func UnmarshalEntity[T any](item map[string]types.AttributeValue) (T, error) {
	var entity T
	stateAttribute, ok := item[currentStateAttribute].(*types.AttributeValueMemberS)
	if !ok {
		return entity, fmt.Errorf("item has no %s attribute", currentStateAttribute)
	}
	if err := json.Unmarshal([]byte(stateAttribute.Value), &entity); err != nil {
		return entity, fmt.Errorf("malformed %s: %w", currentStateAttribute, err)
	}
	return entity, nil
}

func UnmarshalEntities[T any](items []map[string]types.AttributeValue) ([]T, error) {
	entities := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := UnmarshalEntity[T](item)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func StringKey(keyName string, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{keyName: &types.AttributeValueMemberS{Value: value}}
}

// QueryAll follows LastEvaluatedKey until every page has been read.
func QueryAll(ctx context.Context, client API, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = lastKey
		result, err := client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		lastKey = result.LastEvaluatedKey
		if len(lastKey) == 0 {
			return items, nil
		}
	}
}

func ScanAll(ctx context.Context, client API, tableName string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		result, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(tableName),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		lastKey = result.LastEvaluatedKey
		if len(lastKey) == 0 {
			return items, nil
		}
	}
}

func IsConditionalCheckFailed(err error) bool {
	var conditionalCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &conditionalCheckFailed)
}

// IsTransactionConditionFailed reports whether a TransactWriteItems call was
// cancelled because one of its condition expressions did not hold.
func IsTransactionConditionFailed(err error) bool {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		return false
	}
	for _, reason := range cancelled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
