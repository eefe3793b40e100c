// Package journal persists applied actions for post-game inspection.
// Writes are asynchronous and lossy under backpressure: the authority
// loop must never wait on the database.
package journal

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one applied action.
type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	Turn      uint64 `gorm:"index"`
	ActorID   string `gorm:"size:36;index"`
	ActorName string `gorm:"size:64"`
	Kind      string `gorm:"size:16"`
	Detail    string
}

// Journal records applied actions.
type Journal interface {
	Record(e Entry)
	Close()
}

// Nop is the journal used when no DSN is configured.
type Nop struct{}

func (Nop) Record(Entry) {}
func (Nop) Close()       {}

// DB writes entries through gorm from a worker goroutine.
type DB struct {
	db   *gorm.DB
	ch   chan Entry
	done chan struct{}
	log  *zap.SugaredLogger
}

// Open connects to postgres and starts the writer. An empty DSN
// returns a Nop journal.
func Open(dsn string, log *zap.SugaredLogger) (Journal, error) {
	if dsn == "" {
		return Nop{}, nil
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	j := &DB{
		db:   db,
		ch:   make(chan Entry, 512),
		done: make(chan struct{}),
		log:  log,
	}
	go j.run()
	return j, nil
}

// Record enqueues without blocking; under sustained backpressure the
// entry is dropped.
func (j *DB) Record(e Entry) {
	select {
	case j.ch <- e:
	default:
		j.log.Warnw("journal backlog full, dropping entry", "turn", e.Turn)
	}
}

// Close drains pending entries and stops the writer.
func (j *DB) Close() {
	close(j.ch)
	<-j.done
}

func (j *DB) run() {
	defer close(j.done)
	for e := range j.ch {
		if err := j.db.Create(&e).Error; err != nil {
			j.log.Errorw("journal write failed", "err", err)
		}
	}
}
