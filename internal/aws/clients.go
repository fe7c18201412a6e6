package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Needs selects which service clients NewAWSClients builds.
type Needs struct {
	DynamoDB   bool // snapshot table or idempotency table
	SQS        bool // order events
	CloudWatch bool // revenue metrics
}

// Any reports whether at least one client is needed.
func (n Needs) Any() bool {
	return n.DynamoDB || n.SQS || n.CloudWatch
}

// AWSClients holds the service clients of one process. Clients that were not
// requested stay nil.
type AWSClients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewAWSClients loads the shared config once and builds the requested clients.
// It does not touch the network or credentials when nothing is needed.
func NewAWSClients(ctx context.Context, needs Needs) (*AWSClients, error) {
	clients := &AWSClients{}
	if !needs.Any() {
		return clients, nil
	}

	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	if needs.DynamoDB {
		clients.DynamoDB = dynamodb.NewFromConfig(cfg)
	}
	if needs.SQS {
		clients.SQS = sqs.NewFromConfig(cfg)
	}
	if needs.CloudWatch {
		clients.CloudWatch = cloudwatch.NewFromConfig(cfg)
	}
	return clients, nil
}
