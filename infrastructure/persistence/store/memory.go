package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore implements Store in memory for tests. It emulates the table
// semantics the repositories rely on: sort-key ordering, begins_with and
// between key conditions, index reads driven by the item's GSI attributes,
// conditional writes and paged scans.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item // composite "pk\x00sk" -> item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Item)}
}

var _ Store = (*MemoryStore)(nil)

func compositeKey(pk, sk string) string { return pk + "\x00" + sk }

func (s *MemoryStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[compositeKey(pk, sk)]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (s *MemoryStore) Put(ctx context.Context, item Item, ifNotExists bool) error {
	pk := StringAttr(item, "PK")
	sk := StringAttr(item, "SK")
	if pk == "" || sk == "" {
		return errors.New("put: item missing PK or SK")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := compositeKey(pk, sk)
	if ifNotExists {
		if _, exists := s.items[key]; exists {
			return fmt.Errorf("put: %w", ErrConditionFailed)
		}
	}
	s.items[key] = copyItem(item)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, pk, sk string, muts []Mutation, mustExist bool) error {
	if len(muts) == 0 {
		return errors.New("update: empty mutation list")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := compositeKey(pk, sk)
	item, exists := s.items[key]
	if !exists {
		if mustExist {
			return fmt.Errorf("update: %w", ErrConditionFailed)
		}
		// DynamoDB upserts on unconditional updates.
		item = Item{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		}
	} else {
		item = copyItem(item)
	}

	for _, m := range muts {
		switch m.Op {
		case OpSet:
			item[m.Attr] = m.Value
		case OpAdd:
			delta, err := numericValue(m.Value)
			if err != nil {
				return fmt.Errorf("update %s: %w", m.Attr, err)
			}
			current := 0.0
			if existing, ok := item[m.Attr].(*types.AttributeValueMemberN); ok {
				current, _ = strconv.ParseFloat(existing.Value, 64)
			}
			item[m.Attr] = &types.AttributeValueMemberN{
				Value: strconv.FormatFloat(current+delta, 'f', -1, 64),
			}
		case OpRemove:
			delete(item, m.Attr)
		default:
			return fmt.Errorf("update: unknown mutation op %q", m.Op)
		}
	}

	s.items[key] = item
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, pk, sk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, compositeKey(pk, sk))
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, in QueryInput) (*QueryOutput, error) {
	pkAttr, skAttr := keyAttrs(in.IndexName)

	s.mu.RLock()
	type row struct {
		sortKey string
		item    Item
	}
	var rows []row
	for _, item := range s.items {
		if StringAttr(item, pkAttr) != in.PK {
			continue
		}
		sk := StringAttr(item, skAttr)
		if in.SKPrefix != "" && !strings.HasPrefix(sk, in.SKPrefix) {
			continue
		}
		if (in.SKStart != "" || in.SKEnd != "") && (sk < in.SKStart || sk > in.SKEnd) {
			continue
		}
		rows = append(rows, row{sortKey: sk, item: copyItem(item)})
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sortKey != rows[j].sortKey {
			return rows[i].sortKey < rows[j].sortKey
		}
		// Index sort keys can collide; break ties on the primary key.
		return compositeKey(StringAttr(rows[i].item, "PK"), StringAttr(rows[i].item, "SK")) <
			compositeKey(StringAttr(rows[j].item, "PK"), StringAttr(rows[j].item, "SK"))
	})
	if !in.Forward {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	if in.StartKey != nil {
		startPK := StringAttr(in.StartKey, "PK")
		startSK := StringAttr(in.StartKey, "SK")
		idx := -1
		for i, r := range rows {
			if StringAttr(r.item, "PK") == startPK && StringAttr(r.item, "SK") == startSK {
				idx = i
				break
			}
		}
		rows = rows[idx+1:]
	}

	if in.Count {
		return &QueryOutput{Count: int32(len(rows))}, nil
	}

	out := &QueryOutput{}
	limit := len(rows)
	if in.Limit > 0 && int(in.Limit) < limit {
		limit = int(in.Limit)
	}
	for _, r := range rows[:limit] {
		out.Items = append(out.Items, r.item)
	}
	out.Count = int32(len(out.Items))
	if limit < len(rows) && limit > 0 {
		last := rows[limit-1].item
		out.LastKey = lastKeyFor(last, in.IndexName)
	}
	return out, nil
}

func (s *MemoryStore) Scan(ctx context.Context, in ScanInput) (*ScanOutput, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.StartKey != nil {
		resume := compositeKey(StringAttr(in.StartKey, "PK"), StringAttr(in.StartKey, "SK"))
		for i, k := range keys {
			if k == resume {
				start = i + 1
				break
			}
		}
	}

	out := &ScanOutput{}
	for i := start; i < len(keys); i++ {
		if in.Limit > 0 && out.ScannedCount == in.Limit {
			out.LastKey = lastKeyFor(s.items[keys[i-1]], "")
			break
		}
		item := s.items[keys[i]]
		out.ScannedCount++
		if matchesFilter(item, in.Filter) {
			out.Items = append(out.Items, copyItem(item))
		}
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *MemoryStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) > BatchLimit {
		return fmt.Errorf("batch write: %d operations exceeds limit of %d", len(ops), BatchLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		if op.Put != nil {
			pk := StringAttr(op.Put, "PK")
			sk := StringAttr(op.Put, "SK")
			if pk == "" || sk == "" {
				return errors.New("batch write: put item missing PK or SK")
			}
			s.items[compositeKey(pk, sk)] = copyItem(op.Put)
		} else {
			delete(s.items, compositeKey(op.DeletePK, op.DeleteSK))
		}
	}
	return nil
}

// Len reports the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func matchesFilter(item Item, f ScanFilter) bool {
	if f.EntityType != "" && StringAttr(item, "entityType") != f.EntityType {
		return false
	}
	for attr, want := range f.Equals {
		if StringAttr(item, attr) != want {
			return false
		}
	}
	if f.Between != nil {
		v := StringAttr(item, f.Between.Attr)
		if v < f.Between.Start || v > f.Between.End {
			return false
		}
	}
	return true
}

func lastKeyFor(item Item, indexName string) Item {
	key := Item{
		"PK": item["PK"],
		"SK": item["SK"],
	}
	if indexName != "" {
		pkAttr, skAttr := keyAttrs(indexName)
		key[pkAttr] = item[pkAttr]
		key[skAttr] = item[skAttr]
	}
	return key
}

func copyItem(item Item) Item {
	dup := make(Item, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}

func numericValue(v types.AttributeValue) (float64, error) {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("ADD mutation requires a numeric value")
	}
	return strconv.ParseFloat(n.Value, 64)
}
