package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "request_start"
	cacheHitKey       = "cache_hit"
	processingTimeKey = "processing_time_ms"
)

// WithResponseMeta starts a per-request meta map that handlers fill and the response envelope carries.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the payload was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// SetMeta stores one key in the response meta.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta, ok := metaMap(c)
	if !ok {
		meta = make(map[string]interface{})
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// ExtractMeta returns the meta map stamped with the processing time so far.
// It is nil when WithResponseMeta did not run and nothing was set.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, ok := metaMap(c)
	if !ok {
		return nil
	}
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta[processingTimeKey] = time.Since(t).Milliseconds()
		}
	}
	return meta
}

func metaMap(c *gin.Context) (map[string]interface{}, bool) {
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil, false
	}
	meta, ok := value.(map[string]interface{})
	return meta, ok
}
