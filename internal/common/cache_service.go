package common

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache used when Redis is not configured
type CacheService struct {
	cache *cache.Cache
}

var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	return &CacheService{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

// GetInto copies directly when the stored type matches dst, otherwise round-trips through JSON
func (cs *CacheService) GetInto(key string, dst interface{}) bool {
	val, found := cs.cache.Get(key)
	if !found {
		return false
	}

	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return false
	}
	sv := reflect.ValueOf(val)
	if sv.Type().AssignableTo(dv.Elem().Type()) {
		dv.Elem().Set(sv)
		return true
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// Close is a no-op for the in-memory cache
func (cs *CacheService) Close() error {
	return nil
}
