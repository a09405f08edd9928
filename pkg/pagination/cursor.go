// Package pagination encodes the store's last-evaluated key as an opaque
// base64 token for cursor-based pagination.
package pagination

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

// EncodeCursor turns a last-evaluated key into an opaque token. An empty key
// yields an empty token.
func EncodeCursor(lastKey map[string]types.AttributeValue) string {
	if len(lastKey) == 0 {
		return ""
	}

	plain := map[string]string{}
	if err := attributevalue.UnmarshalMap(lastKey, &plain); err != nil {
		return ""
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor turns a token back into a start key. Malformed tokens are
// rejected with an INVALID_PAGINATION_TOKEN validation error.
func DecodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, apperrors.NewValidationError("malformed pagination token").
			WithCode(apperrors.CodeInvalidPagination).WithCause(err)
	}
	var plain map[string]string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, apperrors.NewValidationError("malformed pagination token").
			WithCode(apperrors.CodeInvalidPagination).WithCause(err)
	}
	if len(plain) == 0 {
		return nil, apperrors.NewValidationError("empty pagination token").
			WithCode(apperrors.CodeInvalidPagination)
	}

	key := make(map[string]types.AttributeValue, len(plain))
	for attr, v := range plain {
		key[attr] = &types.AttributeValueMemberS{Value: v}
	}
	return key, nil
}
