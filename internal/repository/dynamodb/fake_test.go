package dynamodb

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory table that understands the condition and
// filter expressions the repositories send
type fakeDynamo struct {
	mu       sync.Mutex
	tables   map[string]bool
	items    map[string]map[string]types.AttributeValue
	pageSize int
	created  int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables:   map[string]bool{},
		items:    map[string]map[string]types.AttributeValue{},
		pageSize: 2,
	}
}

func attrString(v types.AttributeValue) string {
	switch v := v.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	}
	return ""
}

func fakeKey(item map[string]types.AttributeValue) string {
	return attrString(item[attrPK]) + "|" + attrString(item[attrSK])
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

// matches evaluates clauses joined by AND: attribute_exists(x),
// attribute_not_exists(x) and x = :value
func matches(item map[string]types.AttributeValue, expr *string, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	if expr == nil || *expr == "" {
		return true, nil
	}
	resolve := func(name string) string {
		name = strings.TrimSpace(name)
		if real, ok := names[name]; ok {
			return real
		}
		return name
	}

	for _, clause := range strings.Split(*expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "attribute_not_exists("):
			name := resolve(strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_not_exists("), ")"))
			if _, ok := item[name]; ok {
				return false, nil
			}
		case strings.HasPrefix(clause, "attribute_exists("):
			name := resolve(strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_exists("), ")"))
			if _, ok := item[name]; !ok {
				return false, nil
			}
		default:
			lhs, rhs, ok := strings.Cut(clause, " = ")
			if !ok {
				return false, fmt.Errorf("unsupported expression %q", clause)
			}
			want, ok := values[strings.TrimSpace(rhs)]
			if !ok {
				return false, fmt.Errorf("missing expression value %s", rhs)
			}
			got, ok := item[resolve(lhs)]
			if !ok || attrString(got) != attrString(want) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tables[aws.ToString(in.TableName)] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[aws.ToString(in.TableName)] = true
	f.created++
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[fakeKey(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: maps.Clone(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fakeKey(in.Item)
	ok, err := matches(f.items[key], in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conditionFailed()
	}
	f.items[key] = maps.Clone(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fakeKey(in.Key)
	ok, err := matches(f.items[key], in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conditionFailed()
	}
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan pages through items in key order, applying the filter after the
// page is cut the way DynamoDB does
func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := slices.Sorted(maps.Keys(f.items))
	start := 0
	if len(in.ExclusiveStartKey) > 0 {
		after := fakeKey(in.ExclusiveStartKey)
		start, _ = slices.BinarySearch(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	end := min(start+f.pageSize, len(keys))

	out := &dynamodb.ScanOutput{}
	for _, key := range keys[start:end] {
		item := f.items[key]
		ok, err := matches(item, in.FilterExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Items = append(out.Items, maps.Clone(item))
		}
	}
	if end < len(keys) {
		last := f.items[keys[end-1]]
		out.LastEvaluatedKey = map[string]types.AttributeValue{attrPK: last[attrPK], attrSK: last[attrSK]}
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

// TransactWriteItems checks every condition before applying any write
func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, write := range in.TransactItems {
		var (
			key string
			ok  bool
			err error
		)
		switch {
		case write.Put != nil:
			key = fakeKey(write.Put.Item)
			ok, err = matches(f.items[key], write.Put.ConditionExpression, write.Put.ExpressionAttributeNames, write.Put.ExpressionAttributeValues)
		case write.Delete != nil:
			key = fakeKey(write.Delete.Key)
			ok, err = matches(f.items[key], write.Delete.ConditionExpression, write.Delete.ExpressionAttributeNames, write.Delete.ExpressionAttributeValues)
		default:
			return nil, fmt.Errorf("unsupported transact item %d", i)
		}
		if err != nil {
			return nil, err
		}
		reasons[i].Code = aws.String("None")
		if !ok {
			reasons[i].Code = aws.String("ConditionalCheckFailed")
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, write := range in.TransactItems {
		if write.Put != nil {
			f.items[fakeKey(write.Put.Item)] = maps.Clone(write.Put.Item)
			continue
		}
		delete(f.items, fakeKey(write.Delete.Key))
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key := range f.items {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}
