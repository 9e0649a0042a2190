// Package db persists journal entries with gorm.
package db

import (
	"context"
	"time"

	"github.com/akrennmair/slice"
	"github.com/hallwick/stage"
	"github.com/hallwick/stage/journal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type record struct {
	ID    uint   `gorm:"primaryKey"`
	Seq   uint64 `gorm:"uniqueIndex"`
	Kind  string `gorm:"index"`
	Name  string
	Type  string
	Actor string `gorm:"index"`
	Scene string
	At    time.Time
}

func (record) TableName() string {
	return "journal_entries"
}

func (r *record) ToEntry() journal.Entry {
	return journal.Entry{
		Seq:   r.Seq,
		Kind:  journal.Kind(r.Kind),
		Name:  r.Name,
		Type:  r.Type,
		Actor: r.Actor,
		Scene: r.Scene,
		At:    r.At,
	}
}

func fromEntry(entry journal.Entry) *record {
	return &record{
		Seq:   entry.Seq,
		Kind:  string(entry.Kind),
		Name:  entry.Name,
		Type:  entry.Type,
		Actor: entry.Actor,
		Scene: entry.Scene,
		At:    entry.At,
	}
}

type Recorder struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
	opts   journal.Options
}

var (
	_ journal.Recorder = (*Recorder)(nil)
	_ journal.Tailer   = (*Recorder)(nil)
	_ journal.Counter  = (*Recorder)(nil)
)

func New(gdb *gorm.DB, log *zap.Logger, ops ...journal.OptFunc) (*Recorder, error) {
	opts, err := journal.BuildOptions(ops...)
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&record{}); err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Recorder{
		logger: log.Sugar(),
		db:     gdb,
		opts:   opts,
	}, nil
}

func (r *Recorder) Record(ctx context.Context, entry journal.Entry) error {
	err := r.db.WithContext(ctx).Create(fromEntry(entry)).Error
	if stage.CheckDuplicate(err) {
		// the feed redelivers on retry, the seq index dedupes
		r.logger.Debugw("journal entry already recorded", "seq", entry.Seq)
		return nil
	}

	return err
}

func (r *Recorder) BatchRecord(ctx context.Context, entries []journal.Entry) error {
	models := slice.Map(entries, fromEntry)

	return r.db.WithContext(ctx).CreateInBatches(models, r.opts.BatchSize).Error
}

// Entry looks one entry up by its feed sequence number.
func (r *Recorder) Entry(ctx context.Context, seq uint64) (journal.Entry, error) {
	var model record
	err := r.db.WithContext(ctx).Where("seq = ?", seq).First(&model).Error
	if stage.CheckNotFound(err) {
		return journal.Entry{}, stage.ErrNotFound
	}

	if err != nil {
		return journal.Entry{}, err
	}

	return model.ToEntry(), nil
}

func (r *Recorder) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	var models []*record
	if err := r.db.WithContext(ctx).Order("seq desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	return slice.Map(models, (*record).ToEntry), nil
}

func (r *Recorder) CountByKind(ctx context.Context, kind journal.Kind) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&record{}).Where("kind = ?", string(kind)).Count(&n).Error

	return n, err
}
