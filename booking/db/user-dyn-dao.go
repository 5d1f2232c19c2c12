package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

type UserDynDao struct {
	client    dynamoutils.API
	tableName string
}

func NewUserDynDao(client dynamoutils.API, tableName string) *UserDynDao {
	return &UserDynDao{client: client, tableName: tableName}
}

func (dao *UserDynDao) GetUser(ctx context.Context, email string) (model.UserProfile, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dao.tableName),
		Key:            dynamoutils.StringKey(dynamoutils.UserKey, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.UserProfile{}, err
	}
	if len(response.Item) == 0 {
		return model.UserProfile{}, model.ErrItemNotFound
	}
	return dynamoutils.UnmarshalEntity[model.UserProfile](response.Item)
}

// PutUser creates the profile unless one exists already.
func (dao *UserDynDao) PutUser(ctx context.Context, user model.UserProfile) error {
	item, err := dynamoutils.BuildEntityPutItem(dynamoutils.UserKey, &user)
	if err != nil {
		return err
	}
	_, err = dao.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dao.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrConditionFailed
	}
	return err
}
