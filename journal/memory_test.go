package journal

import (
	"context"
	"testing"
	"time"

	"github.com/hallwick/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(seq uint64, kind Kind) Entry {
	return Entry{Seq: seq, Kind: kind, Actor: "a1", Scene: "main", At: time.Now()}
}

func TestMemoryRecent(t *testing.T) {
	var ctx = context.Background()

	mem, err := NewMemoryRecorder()
	require.NoError(t, err)

	require.NoError(t, mem.Record(ctx, entry(1, KindSpawn)))
	require.NoError(t, mem.Record(ctx, entry(2, KindAttach)))
	require.NoError(t, mem.Record(ctx, entry(3, KindDestroy)))

	got, err := mem.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)

	got, err = mem.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemoryBuffer(t *testing.T) {
	var ctx = context.Background()

	mem, err := NewMemoryRecorder(OptBuffer(2))
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, mem.Record(ctx, entry(uint64(i), KindSpawn)))
	}

	assert.Equal(t, 2, mem.Len())

	got, err := mem.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(5), got[0].Seq)
	assert.Equal(t, uint64(4), got[1].Seq)
}

func TestMemoryCountByKind(t *testing.T) {
	var ctx = context.Background()

	mem, err := NewMemoryRecorder()
	require.NoError(t, err)

	require.NoError(t, mem.Record(ctx, entry(1, KindSpawn)))
	require.NoError(t, mem.Record(ctx, entry(2, KindSpawn)))
	require.NoError(t, mem.Record(ctx, entry(3, KindClaim)))

	n, err := mem.CountByKind(ctx, KindSpawn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = mem.CountByKind(ctx, KindRelease)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTee(t *testing.T) {
	var ctx = context.Background()

	first, err := NewMemoryRecorder()
	require.NoError(t, err)
	second, err := NewMemoryRecorder()
	require.NoError(t, err)

	rec := Tee(first, second)
	require.NoError(t, rec.Record(ctx, entry(1, KindLoad)))

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestFromMessage(t *testing.T) {
	at := time.Now()

	msg, err := stage.JSONMarshaler.Marshal(&stage.ActorSpawned{
		GUID:  "g1",
		Name:  "hero",
		Scene: "main",
		At:    at,
	})
	require.NoError(t, err)

	got, ok := FromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, KindSpawn, got.Kind)
	assert.Equal(t, "hero", got.Name)
	assert.Equal(t, "g1", got.Actor)
	assert.Equal(t, "main", got.Scene)

	msg, err = stage.JSONMarshaler.Marshal(&stage.SingletonClaimed{
		Type:  "GameDirector",
		Actor: "g1",
		Via:   stage.ViaAttach,
		At:    at,
	})
	require.NoError(t, err)

	got, ok = FromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, KindClaim, got.Kind)
	assert.Equal(t, "GameDirector", got.Type)

	// directives ride other topics and are not journal material
	msg, err = stage.JSONMarshaler.Marshal(&stage.LoadScene{Name: "arena"})
	require.NoError(t, err)

	_, ok = FromMessage(msg)
	assert.False(t, ok)
}
