package store

import (
	"context"
	"maps"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/pkg/errors"
)

// DynamoDBAPI is the subset of the DynamoDB client the table uses.
// Tests substitute a fake; production passes *dynamodb.Client.
type DynamoDBAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// NewDynamoDBClient builds the DynamoDB client from the regional config.
//
// Credentials come from the default chain (the Lambda execution role in
// production) unless static keys are configured for a local endpoint.
// MaxAttempts of zero keeps the SDK's default retryer.
func NewDynamoDBClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// recordKeyAttribute is the attribute name the record types use for
// their key in dynamodbav tags.
const recordKeyAttribute = "id"

// DynamoDBTable stores records in a DynamoDB table with a numeric
// partition key.
type DynamoDBTable[T Keyed] struct {
	client       DynamoDBAPI
	table        string
	keyAttribute string
}

// NewDynamoDBTable binds a table name and key attribute to a client.
func NewDynamoDBTable[T Keyed](client DynamoDBAPI, table, keyAttribute string) *DynamoDBTable[T] {
	return &DynamoDBTable[T]{
		client:       client,
		table:        table,
		keyAttribute: keyAttribute,
	}
}

// Scan reads every page of the table.
func (d *DynamoDBTable[T]) Scan(ctx context.Context) ([]T, error) {
	items := make([]T, 0)

	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", d.table)
		}

		for _, av := range page.Items {
			item, err := d.decode(av)
			if err != nil {
				return nil, errors.Wrapf(err, "decode %s items", d.table)
			}
			items = append(items, item)
		}
	}

	return items, nil
}

func (d *DynamoDBTable[T]) Get(ctx context.Context, key int) (T, bool, error) {
	var item T

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(key),
	})
	if err != nil {
		return item, false, errors.Wrapf(err, "get %s %d", d.table, key)
	}
	if len(out.Item) == 0 {
		return item, false, nil
	}

	item, err = d.decode(out.Item)
	if err != nil {
		return item, false, errors.Wrapf(err, "decode %s %d", d.table, key)
	}
	return item, true, nil
}

// Put marshals item and writes it without a condition expression.
// The key attribute is always set from item.Key() so a renamed key
// attribute still addresses the right partition.
func (d *DynamoDBTable[T]) Put(ctx context.Context, item T) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.Wrapf(err, "encode %s %d", d.table, item.Key())
	}
	for name, value := range d.key(item.Key()) {
		av[name] = value
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	return errors.Wrapf(err, "put %s %d", d.table, item.Key())
}

func (d *DynamoDBTable[T]) Delete(ctx context.Context, key int) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(key),
	})
	return errors.Wrapf(err, "delete %s %d", d.table, key)
}

func (d *DynamoDBTable[T]) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	})
	return errors.Wrapf(err, "describe %s", d.table)
}

// decode unmarshals a stored item. Items written by other tools may carry
// only the configured key attribute, so its value is copied onto the
// record's own key field before decoding.
func (d *DynamoDBTable[T]) decode(av map[string]types.AttributeValue) (T, error) {
	var item T

	if key, ok := av[d.keyAttribute]; ok && d.keyAttribute != recordKeyAttribute {
		av = maps.Clone(av)
		av[recordKeyAttribute] = key
	}

	err := attributevalue.UnmarshalMap(av, &item)
	return item, err
}

func (d *DynamoDBTable[T]) key(key int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.keyAttribute: &types.AttributeValueMemberN{Value: strconv.Itoa(key)},
	}
}
