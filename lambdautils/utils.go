package lambdautils

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type InvokeAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

func CreateNewClient(awsCfg aws.Config) *lambda.Client {
	return lambda.NewFromConfig(awsCfg)
}

// InvokeAsync queues an event invocation of functionName with payload encoded
// as JSON. It returns once Lambda accepted the event.
func InvokeAsync(ctx context.Context, client InvokeAPI, functionName string, payload any) error {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payloadJson,
	})
	return err
}
