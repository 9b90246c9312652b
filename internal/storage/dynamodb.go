// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of a blob item. The table's partition key is "PK" (string).
const (
	dynamoAttrKey     = "PK"
	dynamoAttrData    = "data"
	dynamoAttrUpdated = "updatedAt"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoBackend.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoBackend stores each key as one item.
type DynamoBackend struct {
	api       dynamodbAPI
	tableName string
}

// OpenDynamoBackend loads the default AWS configuration and returns a backend
// for tableName. endpoint overrides the service URL (e.g. DynamoDB Local).
func OpenDynamoBackend(ctx context.Context, region, endpoint, tableName string) (*DynamoBackend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoBackend(client, tableName)
}

// NewDynamoBackend wraps an existing client.
func NewDynamoBackend(api dynamodbAPI, tableName string) (*DynamoBackend, error) {
	if api == nil {
		return nil, errors.New("dynamodb backend: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb backend: table name must not be empty")
	}
	return &DynamoBackend{api: api, tableName: tableName}, nil
}

func (d *DynamoBackend) Name() string { return "dynamodb" }

func (d *DynamoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			dynamoAttrKey: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", key, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, ErrNoData
	}

	attr, ok := out.Item[dynamoAttrData].(*types.AttributeValueMemberS)
	if !ok {
		return nil, ErrNoData
	}
	return []byte(attr.Value), nil
}

func (d *DynamoBackend) Set(ctx context.Context, key string, data []byte) error {
	_, err := d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			dynamoAttrKey:     &types.AttributeValueMemberS{Value: key},
			dynamoAttrData:    &types.AttributeValueMemberS{Value: string(data)},
			dynamoAttrUpdated: &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().UnixMilli(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %s: %w", key, err)
	}
	return nil
}

func (d *DynamoBackend) Close() error { return nil }
