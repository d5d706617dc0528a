package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
)

// DefaultFunctionName is the name the deployment gives the update function.
const DefaultFunctionName = "avatarclock"

// InvokeAPI is the subset of the Lambda client the invoker uses.
type InvokeAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// Invoker triggers an update on the deployed function outside its schedule.
type Invoker struct {
	client       InvokeAPI
	functionName string
}

// NewInvoker creates an invoker using the default AWS configuration.
func NewInvoker(ctx context.Context, functionName string) (*Invoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewInvokerWithClient(awslambda.NewFromConfig(cfg), functionName), nil
}

// NewInvokerWithClient creates an invoker around an existing client.
func NewInvokerWithClient(client InvokeAPI, functionName string) *Invoker {
	if functionName == "" {
		functionName = DefaultFunctionName
	}
	return &Invoker{client: client, functionName: functionName}
}

// Invoke runs one cycle synchronously and returns the function's response.
func (i *Invoker) Invoke(ctx context.Context, now time.Time) (Response, error) {
	payload, err := json.Marshal(Event{Source: "avatarclock.cli", Time: now.UTC().Format(time.RFC3339)})
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	out, err := i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(i.functionName),
		Payload:      payload,
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to invoke %s: %w", i.functionName, err)
	}
	if out.FunctionError != nil {
		return Response{}, fmt.Errorf("function %s failed: %s: %s", i.functionName, aws.ToString(out.FunctionError), out.Payload)
	}

	var resp Response
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}
