package classifier

// The cache layout follows: https://hackernoon.com/in-memory-caching-in-golang

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"snapsort/utils"
)

type cachedPrediction struct {
	prediction        Prediction
	expireAtTimestamp int64
}

// LocalCache Predictions keyed by the digest of the image they were made for
type LocalCache struct {
	stop chan struct{}
	once sync.Once

	wg          sync.WaitGroup
	mu          sync.RWMutex
	predictions map[string]cachedPrediction
	now         func() time.Time
}

var (
	errPredictionNotInCache = errors.New("the prediction isn't in cache")
)

// NewLocalCache Create a new local cache
func NewLocalCache(cleanupInterval time.Duration) *LocalCache {
	log.Info("Creating new prediction cache with cleanup interval ", cleanupInterval)
	lc := &LocalCache{
		predictions: make(map[string]cachedPrediction),
		stop:        make(chan struct{}),
		now:         time.Now,
	}

	lc.wg.Add(1)
	go func(cleanupInterval time.Duration) {
		defer lc.wg.Done()
		lc.cleanupLoop(cleanupInterval)
	}(cleanupInterval)

	return lc
}

// cleanupLoop Drop expired predictions
func (lc *LocalCache) cleanupLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-lc.stop:
			return
		case <-t.C:
			lc.removeExpired()
		}
	}
}

func (lc *LocalCache) removeExpired() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	now := lc.now().UnixNano()
	for key, cp := range lc.predictions {
		if cp.expireAtTimestamp <= now {
			log.Debug("Prediction expired: ", key)
			delete(lc.predictions, key)
		}
	}
}

// Stop End the cleanup loop. Safe to call more than once.
func (lc *LocalCache) Stop() {
	lc.once.Do(func() {
		close(lc.stop)
		lc.wg.Wait()
	})
}

// Update Add a prediction to the cache
func (lc *LocalCache) Update(key string, prediction Prediction, ttl time.Duration) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.predictions[key] = cachedPrediction{
		prediction:        prediction,
		expireAtTimestamp: lc.now().Add(ttl).UnixNano(),
	}
	log.Debug(fmt.Sprintf("There are now %d predictions in cache", len(lc.predictions)))
}

// Read Read a prediction that has not expired yet
func (lc *LocalCache) Read(key string) (Prediction, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	cp, ok := lc.predictions[key]
	if !ok || cp.expireAtTimestamp <= lc.now().UnixNano() {
		return Prediction{}, errPredictionNotInCache
	}
	return cp.prediction, nil
}

// Len Number of entries, expired ones included until the next cleanup
func (lc *LocalCache) Len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.predictions)
}

// EmptyCache Remove all predictions
func (lc *LocalCache) EmptyCache() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	log.Debug("Emptying complete prediction cache.")
	lc.predictions = make(map[string]cachedPrediction)
}

// CachedClassifier Reuses the prediction of a classifier for identical image bytes
type CachedClassifier struct {
	next  Classifier
	cache *LocalCache
	ttl   time.Duration
}

func NewCachedClassifier(next Classifier, ttl time.Duration, cleanupInterval time.Duration) *CachedClassifier {
	return &CachedClassifier{
		next:  next,
		cache: NewLocalCache(cleanupInterval),
		ttl:   ttl,
	}
}

func (cc *CachedClassifier) Classify(ctx context.Context, upload Upload) (*Prediction, error) {
	key := utils.Digest(upload.Data)
	if cached, err := cc.cache.Read(key); err == nil {
		log.Debug("Prediction cache hit for ", upload.Filename)
		return &cached, nil
	}

	prediction, err := cc.next.Classify(ctx, upload)
	if err != nil {
		return nil, err
	}
	cc.cache.Update(key, *prediction, cc.ttl)
	return prediction, nil
}

// Close Stop the cache and close the wrapped classifier
func (cc *CachedClassifier) Close() {
	cc.cache.Stop()
	cc.cache.EmptyCache()
	cc.next.Close()
}
