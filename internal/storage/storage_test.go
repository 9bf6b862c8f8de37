package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, SetJSON(ctx, m, "k", payload{Name: "a", Count: 2}))

	var got payload
	require.NoError(t, GetJSON(ctx, m, "k", &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemory_DeleteMissingIsNoError(t *testing.T) {
	assert.NoError(t, NewMemory().Delete(context.Background(), "missing"))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("{not json")))

	var got payload
	err := GetJSON(ctx, m, "k", &got)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "unmarshal k")
}

// flakyStore drops every write.
type flakyStore struct{ *Memory }

func (flakyStore) Set(context.Context, string, []byte) error { return nil }

func TestProbe(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, Probe(ctx, m))

	_, err := m.Get(ctx, ProbeKey)
	assert.True(t, IsNotFound(err), "probe key must be removed")

	err = Probe(ctx, flakyStore{NewMemory()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read probe")
}
