package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Client is the slice of the DynamoDB API the adapter uses. It exists so
// tests can substitute the client without AWS infrastructure.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// DynamoStore implements Store on a single DynamoDB table.
type DynamoStore struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewDynamoStore creates a DynamoDB-backed store adapter.
func NewDynamoStore(client Client, tableName string, logger *zap.Logger) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName, logger: logger}
}

var _ Store = (*DynamoStore)(nil)

func (s *DynamoStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       primaryKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", pk, sk, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return out.Item, nil
}

func (s *DynamoStore) Put(ctx context.Context, item Item, ifNotExists bool) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}
	if ifNotExists {
		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
			Build()
		if err != nil {
			return fmt.Errorf("build put condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return translateErr("put", err)
	}
	return nil
}

func (s *DynamoStore) Update(ctx context.Context, pk, sk string, muts []Mutation, mustExist bool) error {
	if len(muts) == 0 {
		return errors.New("update: empty mutation list")
	}

	var upd expression.UpdateBuilder
	for _, m := range muts {
		switch m.Op {
		case OpSet:
			upd = upd.Set(expression.Name(m.Attr), expression.Value(m.Value))
		case OpAdd:
			// Guarded with if_not_exists so first-time counter writes succeed.
			upd = upd.Set(expression.Name(m.Attr),
				expression.Plus(
					expression.IfNotExists(expression.Name(m.Attr), expression.Value(0)),
					expression.Value(m.Value),
				))
		case OpRemove:
			upd = upd.Remove(expression.Name(m.Attr))
		default:
			return fmt.Errorf("update: unknown mutation op %q", m.Op)
		}
	}

	builder := expression.NewBuilder().WithUpdate(upd)
	if mustExist {
		builder = builder.WithCondition(expression.AttributeExists(expression.Name("PK")))
	}
	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       primaryKey(pk, sk),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return translateErr("update", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, pk, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       primaryKey(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", pk, sk, err)
	}
	return nil
}

func (s *DynamoStore) Query(ctx context.Context, in QueryInput) (*QueryOutput, error) {
	pkAttr, skAttr := keyAttrs(in.IndexName)

	keyCond := expression.Key(pkAttr).Equal(expression.Value(in.PK))
	switch {
	case in.SKPrefix != "":
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(in.SKPrefix))
	case in.SKStart != "" || in.SKEnd != "":
		keyCond = keyCond.And(expression.Key(skAttr).Between(
			expression.Value(in.SKStart), expression.Value(in.SKEnd)))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(in.Forward),
	}
	if in.IndexName != "" {
		input.IndexName = aws.String(in.IndexName)
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}
	if in.StartKey != nil {
		input.ExclusiveStartKey = in.StartKey
	}
	if in.Count {
		input.Select = types.SelectCount
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", in.PK, err)
	}
	return &QueryOutput{Items: out.Items, Count: out.Count, LastKey: out.LastEvaluatedKey}, nil
}

func (s *DynamoStore) Scan(ctx context.Context, in ScanInput) (*ScanOutput, error) {
	cond, ok := buildFilter(in.Filter)
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}
	if ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("build scan filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}
	if in.StartKey != nil {
		input.ExclusiveStartKey = in.StartKey
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &ScanOutput{Items: out.Items, ScannedCount: out.ScannedCount, LastKey: out.LastEvaluatedKey}, nil
}

func (s *DynamoStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > BatchLimit {
		return fmt.Errorf("batch write: %d operations exceeds limit of %d", len(ops), BatchLimit)
	}

	requests := make([]types.WriteRequest, 0, len(ops))
	for _, op := range ops {
		if op.Put != nil {
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: op.Put}})
		} else {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: primaryKey(op.DeletePK, op.DeleteSK)},
			})
		}
	}

	pending := map[string][]types.WriteRequest{s.tableName: requests}
	for attempt := 0; attempt < 3 && len(pending) > 0; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("batch write: %w", err)
		}
		pending = out.UnprocessedItems
	}
	if len(pending) > 0 {
		s.logger.Warn("batch write left unprocessed items",
			zap.Int("count", len(pending[s.tableName])))
		return fmt.Errorf("batch write: %d items unprocessed after retries", len(pending[s.tableName]))
	}
	return nil
}

func primaryKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// keyAttrs returns the key attribute names for the base table or a GSI. Index
// key attributes follow the <index>PK/<index>SK naming of the table schema.
func keyAttrs(indexName string) (string, string) {
	if indexName == "" {
		return "PK", "SK"
	}
	return indexName + "PK", indexName + "SK"
}

func buildFilter(f ScanFilter) (expression.ConditionBuilder, bool) {
	var cond expression.ConditionBuilder
	has := false
	and := func(c expression.ConditionBuilder) {
		if has {
			cond = cond.And(c)
		} else {
			cond = c
			has = true
		}
	}

	if f.EntityType != "" {
		and(expression.Name("entityType").Equal(expression.Value(f.EntityType)))
	}
	for attr, v := range f.Equals {
		and(expression.Name(attr).Equal(expression.Value(v)))
	}
	if f.Between != nil {
		and(expression.Name(f.Between.Attr).Between(
			expression.Value(f.Between.Start), expression.Value(f.Between.End)))
	}
	return cond, has
}

func translateErr(op string, err error) error {
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return fmt.Errorf("%s: %w", op, ErrConditionFailed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
