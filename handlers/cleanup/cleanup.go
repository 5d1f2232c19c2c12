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

func handler(ctx context.Context) error {
	existingTableNames, err := dynamoutils.GetExistingTableNames(ctx, components.Dynamo)
	if err != nil {
		return err
	}
	for _, table := range dynamoutils.AllTables(components.Config.Tables) {
		if !slices.Contains(existingTableNames, table.TableName) {
			continue
		}
		if err := dynamoutils.DeleteTable(ctx, components.Dynamo, table.TableName); err != nil {
			return err
		}
		components.Logger.Info("table deleted", "table", table.TableName)
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
