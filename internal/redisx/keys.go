package redisx

import "time"

const (
	// Full print catalog, JSON list: prints:catalog
	KeyCatalog = "prints:catalog"

	// Order status cache: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// App settings map: settings:all
	KeySettings = "settings:all"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalog     = 5 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLSettings    = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)
