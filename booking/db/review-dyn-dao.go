package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

type ReviewDynDao struct {
	client    dynamoutils.API
	tableName string
}

func NewReviewDynDao(client dynamoutils.API, tableName string) *ReviewDynDao {
	return &ReviewDynDao{client: client, tableName: tableName}
}

func (dao *ReviewDynDao) GetReview(ctx context.Context, reviewId string) (model.Review, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dao.tableName),
		Key:            dynamoutils.StringKey("review_id", reviewId),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Review{}, err
	}
	if len(response.Item) == 0 {
		return model.Review{}, model.ErrItemNotFound
	}
	return dynamoutils.UnmarshalEntity[model.Review](response.Item)
}

func (dao *ReviewDynDao) PutNewReview(ctx context.Context, review model.Review) error {
	err := dao.put(ctx, review, "attribute_not_exists(review_id)")
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrConditionFailed
	}
	return err
}

func (dao *ReviewDynDao) PutReview(ctx context.Context, review model.Review) error {
	return dao.put(ctx, review, "")
}

func (dao *ReviewDynDao) put(ctx context.Context, review model.Review, condition string) error {
	item, err := dynamoutils.BuildEntityPutItem("review_id", &review)
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(dao.tableName),
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}
	_, err = dao.client.PutItem(ctx, input)
	return err
}

func (dao *ReviewDynDao) DeleteReview(ctx context.Context, reviewId string) error {
	_, err := dao.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(dao.tableName),
		Key:                 dynamoutils.StringKey("review_id", reviewId),
		ConditionExpression: aws.String("attribute_exists(review_id)"),
	})
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrItemNotFound
	}
	return err
}

func (dao *ReviewDynDao) FindReviewsByRoom(ctx context.Context, roomId string) ([]model.Review, error) {
	return dao.queryIndex(ctx, dynamoutils.RoomReviewsIndex, "room_id", roomId)
}

func (dao *ReviewDynDao) FindReviewsByUser(ctx context.Context, userId string) ([]model.Review, error) {
	return dao.queryIndex(ctx, dynamoutils.UserReviewsIndex, "user_id", userId)
}

func (dao *ReviewDynDao) queryIndex(ctx context.Context, indexName string, attributeName string, value string) ([]model.Review, error) {
	items, err := dynamoutils.QueryAll(ctx, dao.client, &dynamodb.QueryInput{
		TableName:                aws.String(dao.tableName),
		IndexName:                aws.String(indexName),
		KeyConditionExpression:   aws.String("#key = :value"),
		ExpressionAttributeNames: map[string]string{"#key": attributeName},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.Review](items)
}

func (dao *ReviewDynDao) ScanReviews(ctx context.Context) ([]model.Review, error) {
	items, err := dynamoutils.ScanAll(ctx, dao.client, dao.tableName)
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.Review](items)
}
