package monitoring

import (
	"sync/atomic"
	"time"
)

type statStore struct {
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
	cacheErrors  atomic.Uint64
	cacheCorrupt atomic.Uint64

	storeFound    atomic.Uint64
	storeNotFound atomic.Uint64
	storeErrors   atomic.Uint64

	populateSuccess     atomic.Uint64
	populateFailure     atomic.Uint64
	populateLastFailure atomic.Value // *FailureRecord
}

func newStatStore() *statStore {
	store := &statStore{}
	store.populateLastFailure.Store((*FailureRecord)(nil))
	return store
}

func (s *statStore) summary() Summary {
	lastFailure, _ := s.populateLastFailure.Load().(*FailureRecord)

	cache := CacheSummary{
		Hits:    s.cacheHits.Load(),
		Misses:  s.cacheMisses.Load(),
		Errors:  s.cacheErrors.Load(),
		Corrupt: s.cacheCorrupt.Load(),
	}
	if lookups := cache.Hits + cache.Misses + cache.Errors + cache.Corrupt; lookups > 0 {
		cache.HitRatio = float64(cache.Hits) / float64(lookups)
	}

	return Summary{
		GeneratedAt: time.Now(),
		Cache:       cache,
		Store: StoreSummary{
			Found:    s.storeFound.Load(),
			NotFound: s.storeNotFound.Load(),
			Errors:   s.storeErrors.Load(),
		},
		Populate: PopulateSummary{
			Success:     s.populateSuccess.Load(),
			Failure:     s.populateFailure.Load(),
			LastFailure: lastFailure,
		},
	}
}

func (s *statStore) recordLookup(result string) {
	switch result {
	case LookupHit:
		s.cacheHits.Add(1)
	case LookupMiss:
		s.cacheMisses.Add(1)
	case LookupCorrupt:
		s.cacheCorrupt.Add(1)
	default:
		s.cacheErrors.Add(1)
	}
}

func (s *statStore) recordQuery(result string) {
	switch result {
	case QueryFound:
		s.storeFound.Add(1)
	case QueryNotFound:
		s.storeNotFound.Add(1)
	default:
		s.storeErrors.Add(1)
	}
}

func (s *statStore) recordPopulate(result, message string) {
	if result == PopulateSuccess {
		s.populateSuccess.Add(1)
		return
	}
	s.populateFailure.Add(1)
	s.populateLastFailure.Store(&FailureRecord{
		Message:  message,
		Occurred: time.Now(),
	})
}
