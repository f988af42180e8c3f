package logic

import (
	"context"
	"database/sql"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// MockConn records batches and answers QueryRow with a fixed row.
type MockConn struct {
	driver.Conn
	Batches       []*MockBatch
	QueryRowCalls int
	Row           []interface{} // nil answers sql.ErrNoRows
	QueryResult   [][]interface{}
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return &MockRows{data: m.QueryResult, idx: -1}, nil
}

func (m *MockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	b := &MockBatch{}
	m.Batches = append(m.Batches, b)
	return b, nil
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	m.QueryRowCalls++
	return &MockRow{values: m.Row}
}

type MockBatch struct {
	driver.Batch
	Appended [][]interface{}
	Sent     bool
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.Appended = append(m.Appended, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.Sent = true
	return nil
}

func (m *MockBatch) Abort() error {
	return nil
}

type MockRow struct {
	driver.Row
	values []interface{}
}

func (m *MockRow) Scan(dest ...interface{}) error {
	if m.values == nil {
		return sql.ErrNoRows
	}
	for i := range dest {
		assign(dest[i], m.values[i])
	}
	return nil
}

func (m *MockRow) Err() error {
	return nil
}

type MockRows struct {
	driver.Rows
	data [][]interface{}
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx < len(m.data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	for i := range dest {
		assign(dest[i], m.data[m.idx][i])
	}
	return nil
}

func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

func assign(dest interface{}, val interface{}) {
	// Simple reflection to assign value to pointer
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}

// MockPgPool stores feature runs in memory.
type MockPgPool struct {
	Runs map[string][]any
}

func NewMockPgPool() *MockPgPool {
	return &MockPgPool{Runs: make(map[string][]any)}
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &MockPGXRow{values: m.Runs[args[0].(string)]}
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Runs[args[0].(string)] = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

type MockPGXRow struct {
	values []any
}

func (m *MockPGXRow) Scan(dest ...any) error {
	if m.values == nil {
		return pgx.ErrNoRows
	}
	for i := range dest {
		assign(dest[i], m.values[i])
	}
	return nil
}

// MockRedis keeps hashes in memory and replays pipelined commands on Exec.
type MockRedis struct {
	Hashes  map[string]map[string]string
	Expires map[string]time.Duration
}

func NewMockRedis() *MockRedis {
	return &MockRedis{
		Hashes:  make(map[string]map[string]string),
		Expires: make(map[string]time.Duration),
	}
}

func (m *MockRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx)
	out := make(map[string]string, len(m.Hashes[key]))
	for k, v := range m.Hashes[key] {
		out[k] = v
	}
	cmd.SetVal(out)
	return cmd
}

func (m *MockRedis) Pipeline() redis.Pipeliner {
	return &MockPipeline{redis: m}
}

type MockPipeline struct {
	redis.Pipeliner
	redis *MockRedis
	queue []func()
}

func (p *MockPipeline) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	p.queue = append(p.queue, func() {
		for _, k := range keys {
			delete(p.redis.Hashes, k)
		}
	})
	return cmd
}

func (p *MockPipeline) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	p.queue = append(p.queue, func() {
		h, ok := p.redis.Hashes[key]
		if !ok {
			h = make(map[string]string)
			p.redis.Hashes[key] = h
		}
		for _, v := range values {
			for k, val := range v.(map[string]any) {
				h[k] = val.(string)
			}
		}
	})
	return cmd
}

func (p *MockPipeline) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	p.queue = append(p.queue, func() { p.redis.Expires[key] = ttl })
	return cmd
}

func (p *MockPipeline) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	p.queue = append(p.queue, func() {
		var n int64
		for _, k := range keys {
			if _, ok := p.redis.Hashes[k]; ok {
				n++
			}
		}
		cmd.SetVal(n)
	})
	return cmd
}

func (p *MockPipeline) Exec(ctx context.Context) ([]redis.Cmder, error) {
	for _, fn := range p.queue {
		fn()
	}
	p.queue = nil
	return nil, nil
}
