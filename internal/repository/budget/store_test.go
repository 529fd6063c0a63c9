package budget

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/chatdesk/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type fakeKV struct {
	data      map[string]int64
	raw       map[string][]byte
	expires   []expireCall
	incrErr   error
	expireErr error
	getErr    error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]int64{}, raw: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if b, ok := f.raw[key]; ok {
		return b, nil
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (f *fakeKV) IncrBy(_ context.Context, key string, val int64) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.data[key] += val
	return nil
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	if f.expireErr != nil {
		return f.expireErr
	}
	f.expires = append(f.expires, expireCall{key, ttl, nx})
	return nil
}

func TestStore_IncrBySetsWindowTTL(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, time.Hour, 2*time.Hour)
	ctx := context.Background()

	require.NoError(t, s.IncrBy(ctx, "chatdesk:budget:openai:daily:2026-10-15", 10))
	require.NoError(t, s.IncrBy(ctx, "chatdesk:budget:openai:monthly:2026-10", 10))

	assert.Equal(t, []expireCall{
		{"chatdesk:budget:openai:daily:2026-10-15", time.Hour, true},
		{"chatdesk:budget:openai:monthly:2026-10", 2 * time.Hour, true},
	}, kv.expires)
}

func TestStore_DefaultTTLs(t *testing.T) {
	s := New(newFakeKV(), 0, 0)
	assert.Equal(t, DefaultDailyTTL, s.dailyTTL)
	assert.Equal(t, DefaultMonthlyTTL, s.monthlyTTL)
}

func TestStore_IncrByErrors(t *testing.T) {
	boom := errors.New("boom")

	kv := newFakeKV()
	kv.incrErr = boom
	err := New(kv, 0, 0).IncrBy(context.Background(), "k:daily:x", 1)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, kv.expires)

	kv = newFakeKV()
	kv.expireErr = boom
	err = New(kv, 0, 0).IncrBy(context.Background(), "k:daily:x", 1)
	require.ErrorIs(t, err, boom)
}

func TestStore_Get(t *testing.T) {
	kv := newFakeKV()
	kv.data["present"] = 42
	kv.raw["garbage"] = []byte("forty-two")
	s := New(kv, 0, 0)
	ctx := context.Background()

	n, err := s.Get(ctx, "present")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Get(ctx, "garbage")
	require.Error(t, err)

	down := &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	kv.getErr = down
	_, err = s.Get(ctx, "present")
	require.ErrorIs(t, err, down)
}
