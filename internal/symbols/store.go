// Package symbols mirrors the published security master into a local
// database and answers minimum lot size lookups for the replication
// engine. Lookups go through a read-through cache so concurrent cycles
// never contend on the database.
package symbols

import (
	"context"
	"sync"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
)

// Record is one security master row.
type Record struct {
	SecurityID int64  `gorm:"column:security_id;primaryKey" csv:"Security ID"`
	Symbol     string `gorm:"column:symbol" csv:"Stock Symbol"`
	Exchange   string `gorm:"column:exchange" csv:"Exchange"`
	MinLot     int64  `gorm:"column:min_lot" csv:"Min Qty"`
}

func (Record) TableName() string { return "symbols" }

type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[int64]int64
}

func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, exception.ErrSymbolNilDB
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, errors.Wrap(err, "migrate symbols table")
	}
	return &Store{
		db:    db,
		cache: make(map[int64]int64),
	}, nil
}

// MinLotSize returns the minimum tradable lot for a security id.
// The second return is false when the id is unknown or the stored
// value is not positive; callers default to 1.
func (s *Store) MinLotSize(ctx context.Context, securityID int64) (int64, bool) {
	s.mu.RLock()
	lot, ok := s.cache[securityID]
	s.mu.RUnlock()
	if ok {
		return lot, lot > 0
	}

	var records []Record
	err := s.db.WithContext(ctx).
		Where("security_id = ?", securityID).
		Limit(1).
		Find(&records).Error
	if err != nil {
		logs.Warnf("lookup min lot for security %d, err: %+v", securityID, err)
		return 0, false
	}
	if len(records) == 0 {
		return 0, false
	}

	s.mu.Lock()
	s.cache[securityID] = records[0].MinLot
	s.mu.Unlock()
	return records[0].MinLot, records[0].MinLot > 0
}

// Replace swaps the entire symbols table for the given rows in one
// transaction and drops the cache.
func (s *Store) Replace(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return exception.ErrSymbolMasterEmpty
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Record{}).Error; err != nil {
			return errors.Wrap(err, "clear symbols table")
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return errors.Wrap(err, "insert symbols")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = make(map[int64]int64, len(records))
	s.mu.Unlock()
	return nil
}

// Count reports the number of mirrored rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count symbols")
	}
	return n, nil
}
