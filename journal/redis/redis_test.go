package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/hallwick/stage/journal"
	"github.com/tj/assert"
)

func TestCountersInc(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db)
	assert.NotNil(t, counters)

	mock.ExpectIncr("journal:claims").SetVal(1)

	v, err := counters.Inc(journal.KindClaim)
	assert.NoError(t, err)
	assert.Equal(t, v, 1)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountersIncWithExpires(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db, OptExpires(time.Second))
	assert.NotNil(t, counters)

	mock.ExpectIncr("journal:claims").SetVal(1)
	mock.ExpectExpire("journal:claims", time.Second).SetVal(true)

	v, err := counters.Inc(journal.KindClaim)
	assert.NoError(t, err)
	assert.Equal(t, v, 1)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountersIncPublish(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db, OptPublish())
	assert.NotNil(t, counters)

	mock.ExpectIncr("journal:spawns").SetVal(2)
	mock.ExpectPublish("journal:spawns", []byte{50}).SetErr(nil)

	v, err := counters.Inc(journal.KindSpawn)
	assert.NoError(t, err)
	assert.Equal(t, v, 2)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountersIncBy(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db)

	mock.ExpectIncrBy("journal:spawns", 5).SetVal(5)

	v, err := counters.IncBy(journal.KindSpawn, 5)
	assert.NoError(t, err)
	assert.Equal(t, v, 5)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountersPattern(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db, OptPattern(func(prefix string, kind journal.Kind) string {
		return fmt.Sprintf("%s:%s:%s", prefix, time.Now().Format("2006-01-02"), kind)
	}))

	mock.ExpectIncr(fmt.Sprintf("journal:%s:claim", time.Now().Format("2006-01-02"))).SetVal(1)

	v, err := counters.Inc(journal.KindClaim)
	assert.NoError(t, err)
	assert.Equal(t, v, 1)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountersRemove(t *testing.T) {
	var (
		db, mock = redismock.NewClientMock()
	)

	counters := NewCounters[int]("journal", db)

	mock.ExpectDel("journal:duplicates").SetVal(1)

	assert.True(t, counters.Remove(journal.KindDuplicate))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecorderRecord(t *testing.T) {
	var (
		ctx      = context.Background()
		db, mock = redismock.NewClientMock()
	)

	rec := NewRecorder("journal", db)

	mock.ExpectIncr("journal:spawns").SetVal(1)

	err := rec.Record(ctx, journal.Entry{Seq: 1, Kind: journal.KindSpawn})
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecorderCount(t *testing.T) {
	var (
		ctx      = context.Background()
		db, mock = redismock.NewClientMock()
	)

	rec := NewRecorder("journal", db)

	mock.ExpectGet("journal:spawns").SetVal("3")

	n, err := rec.CountByKind(ctx, journal.KindSpawn)
	assert.NoError(t, err)
	assert.Equal(t, n, int64(3))

	mock.ExpectGet("journal:releases").RedisNil()

	n, err = rec.CountByKind(ctx, journal.KindRelease)
	assert.NoError(t, err)
	assert.Equal(t, n, int64(0))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
