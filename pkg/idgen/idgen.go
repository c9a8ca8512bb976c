// Package idgen generates the identifiers and order numbers used across the
// finance ledger: snowflake IDs for event keys, RCH order numbers for wallet
// recharges and short uuid-derived order numbers for withdrawals.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snowflake layout: sign bit, 41-bit millisecond timestamp, 10-bit worker ID,
// 12-bit per-millisecond sequence.
const (
	epoch          = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	workerIDBits   = 10
	sequenceBits   = 12
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

type Snowflake struct {
	mu        sync.Mutex
	timestamp int64
	workerID  int64
	sequence  int64
}

var (
	defaultGenerator *Snowflake
	once             sync.Once
)

// Init configures the default generator. Call once at process start.
func Init(workerID int64) {
	once.Do(func() {
		if workerID < 0 || workerID > maxWorkerID {
			log.Fatalf("workerID must be between 0 and %d", maxWorkerID)
		}
		defaultGenerator = &Snowflake{workerID: workerID}
	})
}

// NextID returns the next snowflake ID from the default generator.
func NextID() int64 {
	if defaultGenerator == nil {
		Init(1)
	}
	return defaultGenerator.Generate()
}

func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// sequence exhausted for this millisecond, spin to the next one
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.timestamp = now

	return ((now - epoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence
}

// GenerateRechargeOrderNumber builds a recharge order number in the form
// RCH<6 trailing digits of the ms timestamp><4 uppercase hex chars>,
// e.g. RCH048391A7F2. Uniqueness is enforced by the store's unique index;
// callers retry generation on a duplicate-key error.
func GenerateRechargeOrderNumber() string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// snowflake sequence if it somehow does
		return fmt.Sprintf("RCH%s%04X", timestamp[len(timestamp)-6:], NextID()&0xFFFF)
	}
	return fmt.Sprintf("RCH%s%s", timestamp[len(timestamp)-6:], strings.ToUpper(hex.EncodeToString(suffix)))
}

// GenerateDepenseOrderNumber returns the 8-char uuid prefix used as a
// withdrawal order number.
func GenerateDepenseOrderNumber() string {
	return uuid.NewString()[:8]
}

// GenerateEventKey returns a globally unique key for outbox messages.
// Format: EVT + yyyymmddhhmmss + 8 trailing digits of a snowflake ID.
func GenerateEventKey() string {
	id := NextID()
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("EVT%s%08d", timestamp, id%100000000)
}
