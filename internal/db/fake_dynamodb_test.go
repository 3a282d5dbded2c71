package db

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory table keyed by customerAndVesselId + licenseKey.
// Query honors ExclusiveStartKey and stops after pageLimit items, like the 1 MB limit would.
type fakeDynamoDB struct {
	mu        sync.Mutex
	region    string
	pageLimit int
	items     map[string]map[string]map[string]types.AttributeValue

	putErr      error
	getErr      error
	deleteErr   error
	queryErr    error
	describeErr error

	// lastEvaluatedKey, when set, replaces the computed key on every query.
	lastEvaluatedKey map[string]types.AttributeValue

	calls     map[string]int
	lastQuery *dynamodb.QueryInput
	lastPut   *dynamodb.PutItemInput
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{
		region: "eu-central-1",
		items:  make(map[string]map[string]map[string]types.AttributeValue),
		calls:  make(map[string]int),
	}
}

func (f *fakeDynamoDB) Options() dynamodb.Options {
	return dynamodb.Options{Region: f.region}
}

func keyString(av types.AttributeValue) (string, error) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("ValidationException: key attribute must be a string")
	}
	if s.Value == "" {
		return "", errors.New("ValidationException: key attribute must not be empty")
	}
	return s.Value, nil
}

func keysOf(m map[string]types.AttributeValue) (string, string, error) {
	pk, err := keyString(m[AttrPartitionKey])
	if err != nil {
		return "", "", err
	}
	sk, err := keyString(m[AttrLicenseKey])
	if err != nil {
		return "", "", err
	}
	return pk, sk, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamoDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutItem"]++
	f.lastPut = params
	if f.putErr != nil {
		return nil, f.putErr
	}

	pk, sk, err := keysOf(params.Item)
	if err != nil {
		return nil, err
	}
	if f.items[pk] == nil {
		f.items[pk] = make(map[string]map[string]types.AttributeValue)
	}
	f.items[pk][sk] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetItem"]++
	if f.getErr != nil {
		return nil, f.getErr
	}

	pk, sk, err := keysOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := f.items[pk][sk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteItem"]++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	pk, sk, err := keysOf(params.Key)
	if err != nil {
		return nil, err
	}
	delete(f.items[pk], sk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Query"]++
	f.lastQuery = params
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	pk, err := keyString(params.ExpressionAttributeValues[":"+AttrPartitionKey])
	if err != nil {
		return nil, err
	}

	var start string
	if params.ExclusiveStartKey != nil {
		startPK, startSK, err := keysOf(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		if startPK != pk {
			return nil, errors.New("ValidationException: exclusive start key must match the key condition")
		}
		start = startSK
	}

	partition := f.items[pk]
	sortKeys := make([]string, 0, len(partition))
	for sk := range partition {
		if params.ExclusiveStartKey != nil && sk <= start {
			continue
		}
		sortKeys = append(sortKeys, sk)
	}
	sort.Strings(sortKeys)

	out := &dynamodb.QueryOutput{}
	for i, sk := range sortKeys {
		if f.pageLimit > 0 && i == f.pageLimit {
			last := sortKeys[i-1]
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				AttrPartitionKey: stringValue(pk),
				AttrLicenseKey:   stringValue(last),
			}
			break
		}
		out.Items = append(out.Items, copyItem(partition[sk]))
	}
	out.Count = int32(len(out.Items))

	if f.lastEvaluatedKey != nil {
		out.LastEvaluatedKey = f.lastEvaluatedKey
	}
	return out, nil
}

func (f *fakeDynamoDB) DescribeTable(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DescribeTable"]++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableName: params.TableName},
	}, nil
}

func (f *fakeDynamoDB) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}
