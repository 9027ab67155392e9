package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamoDB is an in-memory DynamoDB keyed by a numeric attribute.
// Scan pages are pageSize items long so the paginator has work to do.
type fakeDynamoDB struct {
	mu           sync.Mutex
	keyAttribute string
	pageSize     int
	items        map[int]map[string]types.AttributeValue
	scanCalls    int

	err error
}

func newFakeDynamoDB(keyAttribute string) *fakeDynamoDB {
	return &fakeDynamoDB{
		keyAttribute: keyAttribute,
		pageSize:     2,
		items:        make(map[int]map[string]types.AttributeValue),
	}
}

func (f *fakeDynamoDB) keyOf(key map[string]types.AttributeValue) int {
	n, ok := key[f.keyAttribute].(*types.AttributeValueMemberN)
	if !ok {
		panic("key attribute missing or not numeric")
	}
	id, err := strconv.Atoi(n.Value)
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fakeDynamoDB) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scanCalls++
	if f.err != nil {
		return nil, f.err
	}

	keys := make([]int, 0, len(f.items))
	for id := range f.items {
		keys = append(keys, id)
	}
	sort.Ints(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		after := f.keyOf(params.ExclusiveStartKey)
		start = sort.SearchInts(keys, after+1)
	}

	out := &dynamodb.ScanOutput{}
	end := min(start+f.pageSize, len(keys))
	for _, id := range keys[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			f.keyAttribute: &types.AttributeValueMemberN{Value: strconv.Itoa(keys[end-1])},
		}
	}
	return out, nil
}

func (f *fakeDynamoDB) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[f.keyOf(params.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if params.ConditionExpression != nil {
		panic("puts must be unconditional")
	}
	f.items[f.keyOf(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, f.keyOf(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoDB) DescribeTable(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableName: params.TableName},
	}, nil
}

func TestDynamoDBTable(t *testing.T) {
	testTableContract(t, func(t *testing.T) Table[model.Guitar] {
		return NewDynamoDBTable[model.Guitar](newFakeDynamoDB("id"), "Guitars", "id")
	})
}

func TestDynamoDBTable_ScanReadsEveryPage(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamoDB("id")
	table := NewDynamoDBTable[model.Guitar](fake, "Guitars", "id")

	for id := 1; id <= 5; id++ {
		require.NoError(t, table.Put(ctx, model.Guitar{ID: id}))
	}

	items, err := table.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 3, fake.scanCalls)
}

func TestDynamoDBTable_WritesNumericKeyAttribute(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamoDB("GuitarId")
	table := NewDynamoDBTable[model.Guitar](fake, "Guitars", "GuitarId")

	require.NoError(t, table.Put(ctx, model.Guitar{ID: 12, Brand: "PRS"}))

	stored := fake.items[12]
	require.NotNil(t, stored)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "12"}, stored["GuitarId"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "PRS"}, stored["brand"])

	got, found, err := table.Get(ctx, 12)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "PRS", got.Brand)
}

func TestDynamoDBTable_ReadsItemsKeyedOnlyByKeyAttribute(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamoDB("GuitarId")
	table := NewDynamoDBTable[model.Guitar](fake, "Guitars", "GuitarId")

	seeded := map[string]types.AttributeValue{
		"GuitarId": &types.AttributeValueMemberN{Value: "12"},
		"brand":    &types.AttributeValueMemberS{Value: "PRS"},
	}
	fake.items[12] = seeded

	got, found, err := table.Get(ctx, 12)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.Guitar{ID: 12, Brand: "PRS"}, got)

	items, err := table.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Guitar{{ID: 12, Brand: "PRS"}}, items)

	_, added := seeded["id"]
	assert.False(t, added, "stored item must not be modified")
}

func TestDynamoDBTable_FaultsPropagate(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamoDB("id")
	fake.err = &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	table := NewDynamoDBTable[model.Guitar](fake, "Guitars", "id")

	var throttled *types.ProvisionedThroughputExceededException

	_, err := table.Scan(ctx)
	assert.True(t, errors.As(err, &throttled))

	_, found, err := table.Get(ctx, 1)
	assert.False(t, found)
	assert.True(t, errors.As(err, &throttled))

	assert.True(t, errors.As(table.Put(ctx, model.Guitar{ID: 1}), &throttled))
	assert.True(t, errors.As(table.Delete(ctx, 1), &throttled))
	assert.True(t, errors.As(table.Ping(ctx), &throttled))
}
