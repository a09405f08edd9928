// Package store is the thin adapter between the entity repositories and the
// underlying key-value table. It exposes the only access shapes the rest of
// the service is allowed to use: point gets, conditional puts, expression
// updates, prefix/index queries, single-page scans and batched writes.
//
// Two implementations exist: DynamoStore for production and MemoryStore for
// tests. Repositories depend on the Store interface only.
package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is one row of the table, keyed by attribute name.
type Item = map[string]types.AttributeValue

// ErrConditionFailed is returned when a conditional put or update is rejected
// by the store. Repositories map it to domain conflicts such as duplicate
// signup or duplicate enrollment.
var ErrConditionFailed = errors.New("conditional check failed")

// IsConditionFailed reports whether err is a rejected conditional write.
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// MutationOp is the operation applied to one attribute in an update.
type MutationOp string

const (
	// OpSet overwrites the attribute.
	OpSet MutationOp = "SET"
	// OpAdd increments a numeric attribute, treating a missing attribute as
	// zero (rendered with an if_not_exists guard).
	OpAdd MutationOp = "ADD"
	// OpRemove deletes the attribute.
	OpRemove MutationOp = "REMOVE"
)

// Mutation is one (attribute, op, value) tuple of an update expression.
type Mutation struct {
	Attr  string
	Op    MutationOp
	Value types.AttributeValue // nil for OpRemove
}

// Set is shorthand for a SET mutation of a string attribute.
func Set(attr, value string) Mutation {
	return Mutation{Attr: attr, Op: OpSet, Value: &types.AttributeValueMemberS{Value: value}}
}

// SetValue is shorthand for a SET mutation of an arbitrary attribute value.
func SetValue(attr string, value types.AttributeValue) Mutation {
	return Mutation{Attr: attr, Op: OpSet, Value: value}
}

// Add is shorthand for an if_not_exists-guarded numeric increment.
func Add(attr string, delta int) Mutation {
	return Mutation{Attr: attr, Op: OpAdd, Value: NumberValue(delta)}
}

// Remove is shorthand for a REMOVE mutation.
func Remove(attr string) Mutation {
	return Mutation{Attr: attr, Op: OpRemove}
}

// QueryInput describes a key-condition read on the base table or an index.
type QueryInput struct {
	PK        string // partition key value (GSInPK value when IndexName set)
	SKPrefix  string // begins_with on the sort key; empty means partition-only
	SKStart   string // inclusive range start; used with SKEnd instead of SKPrefix
	SKEnd     string // inclusive range end
	IndexName string // empty for the base table
	Forward   bool   // sort-key order; false reverses
	Limit     int32  // 0 means no limit
	StartKey  Item   // exclusive start key from a previous page
	Count     bool   // return the count only, no items
}

// QueryOutput is one page of query results.
type QueryOutput struct {
	Items   []Item
	Count   int32
	LastKey Item // nil when the page is the last one
}

// ScanFilter is the structured filter the adapter can render; all clauses
// are ANDed. Substring matching is deliberately absent: callers filter
// substrings in memory after retrieval.
type ScanFilter struct {
	EntityType string            // equality on the entityType discriminator
	Equals     map[string]string // equality on string attributes
	Between    *BetweenClause    // lexicographic range on one string attribute
}

// BetweenClause is an inclusive range on a string attribute.
type BetweenClause struct {
	Attr  string
	Start string
	End   string
}

// ScanInput describes a single-page filtered scan.
type ScanInput struct {
	Filter   ScanFilter
	Limit    int32
	StartKey Item
}

// ScanOutput is one page of scan results. ScannedCount counts items examined
// before filtering; consumers that need N filtered items re-invoke with
// LastKey until satisfied.
type ScanOutput struct {
	Items        []Item
	ScannedCount int32
	LastKey      Item
}

// WriteOp is one element of a batched write: exactly one of Put or Delete.
type WriteOp struct {
	Put       Item
	DeletePK  string
	DeleteSK  string
}

// BatchLimit is the store's batch-write size limit.
const BatchLimit = 25

// Store is the adapter surface. Conditional failures surface as
// ErrConditionFailed; every other failure wraps the transport error.
type Store interface {
	// Get returns the item at (pk, sk), or nil when absent.
	Get(ctx context.Context, pk, sk string) (Item, error)
	// Put writes item. With ifNotExists the write is conditioned on
	// attribute_not_exists(PK).
	Put(ctx context.Context, item Item, ifNotExists bool) error
	// Update applies muts to the item at (pk, sk) as one update expression.
	// Empty mutation lists are rejected. With mustExist the update is
	// conditioned on attribute_exists(PK).
	Update(ctx context.Context, pk, sk string, muts []Mutation, mustExist bool) error
	// Delete removes the item at (pk, sk); absent items are not an error.
	Delete(ctx context.Context, pk, sk string) error
	// Query runs one key-condition read and returns one page.
	Query(ctx context.Context, in QueryInput) (*QueryOutput, error)
	// Scan runs one filtered scan page. The adapter never loops.
	Scan(ctx context.Context, in ScanInput) (*ScanOutput, error)
	// BatchWrite applies up to BatchLimit put/delete operations.
	BatchWrite(ctx context.Context, ops []WriteOp) error
}

// StringAttr extracts a string attribute from an item, or "".
func StringAttr(item Item, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// NumberValue builds a numeric attribute value.
func NumberValue(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}
