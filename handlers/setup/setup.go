package main

import (
	"context"
	"slices"

	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/dynamoutils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context) ([]string, error) {
	existingTableNames, err := dynamoutils.GetExistingTableNames(ctx, components.Dynamo)
	if err != nil {
		return nil, err
	}

	created := []string{}
	for _, table := range dynamoutils.AllTables(components.Config.Tables) {
		if slices.Contains(existingTableNames, table.TableName) {
			continue
		}
		if _, err := dynamoutils.CreateTable(ctx, components.Dynamo, table); err != nil {
			return created, err
		}
		components.Logger.Info("table created", "table", table.TableName)
		created = append(created, table.TableName)
	}
	return created, nil
}

func main() {
	lambda.Start(handler)
}
