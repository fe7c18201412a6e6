// Package awsmock provides in-memory stand-ins for the AWS clients. It is
// imported only from _test.go files and never linked into a binary. The
// DynamoDB fake understands just enough of the expression syntax the service
// issues: attribute_not_exists conditions, equality conditions and plain SET
// update expressions.
package awsmock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// primaryKeys are the partition key attribute names used across our tables.
var primaryKeys = []string{"idempotency_key", "snapshot_key"}

type Item = map[string]types.AttributeValue

// Dynamo stores items per table in a nested map: table -> pk value -> item.
type Dynamo struct {
	mu     sync.Mutex
	Tables map[string]map[string]Item

	PutCalls    int
	GetCalls    int
	UpdateCalls int
}

func NewDynamo() *Dynamo {
	return &Dynamo{Tables: map[string]map[string]Item{}}
}

func (m *Dynamo) table(name string) map[string]Item {
	if _, ok := m.Tables[name]; !ok {
		m.Tables[name] = map[string]Item{}
	}
	return m.Tables[name]
}

// Lookup returns a stored item for assertions.
func (m *Dynamo) Lookup(table, pk string) (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.table(table)[pk]
	return it, ok
}

func pkOf(attrs Item) (string, string, error) {
	for _, name := range primaryKeys {
		if v, ok := attrs[name].(*types.AttributeValueMemberS); ok {
			return name, v.Value, nil
		}
	}
	return "", "", errors.New("no primary key attribute")
}

func (m *Dynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++

	tbl := m.table(*params.TableName)
	name, pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		want := fmt.Sprintf("attribute_not_exists(%s)", name)
		if *params.ConditionExpression != want {
			return nil, fmt.Errorf("unsupported condition %q", *params.ConditionExpression)
		}
		if _, exists := tbl[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	tbl[pk] = copyItem(params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (m *Dynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++

	_, pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table(*params.TableName)[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: copyItem(item)}, nil
}

func (m *Dynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	tbl := m.table(*params.TableName)
	name, pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	resolve := func(attr string) string {
		if real, ok := params.ExpressionAttributeNames[attr]; ok {
			return real
		}
		return attr
	}

	item, exists := tbl[pk]
	if params.ConditionExpression != nil {
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		lhs, rhs, ok := strings.Cut(*params.ConditionExpression, " = ")
		if !ok {
			return nil, fmt.Errorf("unsupported condition %q", *params.ConditionExpression)
		}
		if !equalS(item[resolve(lhs)], params.ExpressionAttributeValues[rhs]) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !exists {
		item = Item{name: &types.AttributeValueMemberS{Value: pk}}
	} else {
		item = copyItem(item)
	}

	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, assignment := range strings.Split(expr, ",") {
		lhs, rhs, ok := strings.Cut(strings.TrimSpace(assignment), " = ")
		if !ok {
			return nil, fmt.Errorf("unsupported update %q", assignment)
		}
		v, ok := params.ExpressionAttributeValues[rhs]
		if !ok {
			return nil, fmt.Errorf("missing value for %s", rhs)
		}
		item[resolve(lhs)] = v
	}
	tbl[pk] = item
	return &dyn.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func equalS(a, b types.AttributeValue) bool {
	as, ok1 := a.(*types.AttributeValueMemberS)
	bs, ok2 := b.(*types.AttributeValueMemberS)
	return ok1 && ok2 && as.Value == bs.Value
}

func copyItem(in Item) Item {
	out := make(Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
