package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

// CatalogDynDao reads one catalog table. Dining and services share the item
// shape and differ only in the key name.
type CatalogDynDao struct {
	client    dynamoutils.API
	tableName string
	keyName   string
}

func NewDiningDynDao(client dynamoutils.API, tableName string) *CatalogDynDao {
	return &CatalogDynDao{client: client, tableName: tableName, keyName: dynamoutils.DiningKey}
}

func NewServicesDynDao(client dynamoutils.API, tableName string) *CatalogDynDao {
	return &CatalogDynDao{client: client, tableName: tableName, keyName: dynamoutils.ServiceKey}
}

func (dao *CatalogDynDao) GetCatalogItem(ctx context.Context, id string) (model.CatalogItem, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dao.tableName),
		Key:       dynamoutils.StringKey(dao.keyName, id),
	})
	if err != nil {
		return model.CatalogItem{}, err
	}
	if len(response.Item) == 0 {
		return model.CatalogItem{}, model.ErrItemNotFound
	}
	return dynamoutils.UnmarshalEntity[model.CatalogItem](response.Item)
}

func (dao *CatalogDynDao) ScanCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	items, err := dynamoutils.ScanAll(ctx, dao.client, dao.tableName)
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.CatalogItem](items)
}
