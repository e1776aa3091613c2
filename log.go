package saferheap

import "sync/atomic"

import log "github.com/bnclabs/golog"

var logok = int64(0)

// LogComponents enables logging for this package. By default logging
// is disabled (debugf/infof/etc. are a single atomic load away from a
// no-op); call this with "saferheap" or "all" to turn it on. Mirrors
// the teacher's per-package LogComponents convention (llrb.LogComponents,
// bogn.LogComponents), now pointed at the real github.com/bnclabs/golog
// dependency instead of a vendored copy.
func LogComponents(components ...string) {
	for _, comp := range components {
		switch comp {
		case "saferheap", "self", "all":
			atomic.StoreInt64(&logok, 1)
		}
	}
}

func debugf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Debugf(format, v...)
	}
}

func errorf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Errorf(format, v...)
	}
}

func infof(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Infof(format, v...)
	}
}

func warnf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Warnf(format, v...)
	}
}
