package idgen

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID_UniqueAcrossGoroutines(t *testing.T) {
	const perGoroutine = 1000
	const goroutines = 8

	var mu sync.Mutex
	seen := make(map[int64]struct{}, perGoroutine*goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, NextID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, perGoroutine*goroutines)
}

func TestNextID_Monotonic(t *testing.T) {
	prev := NextID()
	for i := 0; i < 100; i++ {
		next := NextID()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestGenerateRechargeOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^RCH[0-9]{6}[0-9A-F]{4}$`)
	for i := 0; i < 100; i++ {
		orderNumber := GenerateRechargeOrderNumber()
		assert.Regexp(t, pattern, orderNumber)
		assert.Len(t, orderNumber, 13)
	}
}

func TestGenerateDepenseOrderNumber(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		orderNumber := GenerateDepenseOrderNumber()
		assert.Len(t, orderNumber, 8)
		seen[orderNumber] = struct{}{}
	}
	// 8 hex-ish chars of a uuid; collisions in 100 draws would be a bug
	assert.Len(t, seen, 100)
}

func TestGenerateEventKey(t *testing.T) {
	pattern := regexp.MustCompile(`^EVT[0-9]{14}[0-9]{8}$`)
	assert.Regexp(t, pattern, GenerateEventKey())
	assert.NotEqual(t, GenerateEventKey(), GenerateEventKey())
}
