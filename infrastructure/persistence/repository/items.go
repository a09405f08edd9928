// Package repository contains one repository per entity family. Each
// repository owns its family's key schema and every read/write shape for it,
// translating domain operations into store-adapter calls.
package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
)

// marshalEntity marshals v and stamps the entityType discriminator. Key
// attributes are injected by the caller.
func marshalEntity(v any, entityType string) (store.Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", entityType, err)
	}
	item[schema.AttrEntityType] = s(entityType)
	return item, nil
}

// unmarshalEntity parses an item into its variant; each repository only ever
// hands it items of its own family.
func unmarshalEntity(item store.Item, v any) error {
	if err := attributevalue.UnmarshalMap(item, v); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

func s(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func boolAttr(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}
