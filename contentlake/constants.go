package contentlake

import "time"

const (
	DefaultCursorTTL  = time.Hour
	DefaultWorkers    = 8
	DefaultQueryLimit = 20
)
