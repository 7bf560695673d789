package logging

import (
	"log"
	"strings"
	"sync"
)

const (
	Critical = 50
	Fatal    = Critical
	Error    = 40
	Warning  = 30
	Info     = 20
	Debug    = 10
	NotSet   = 0
)

var (
	logLevel      = Warning
	logLevelMutex sync.Mutex
)

// SetLevel sets the minimum level that will be emitted.
func SetLevel(level int) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	logLevel = level
}

// SetLevelFromName maps a config-style level name ("debug", "info", ...) to
// its numeric level. Unknown names leave the level unchanged.
func SetLevelFromName(name string) {
	switch strings.ToLower(name) {
	case "debug":
		SetLevel(Debug)
	case "info":
		SetLevel(Info)
	case "warning", "warn":
		SetLevel(Warning)
	case "error":
		SetLevel(Error)
	case "critical":
		SetLevel(Critical)
	}
}

func Debugf(format string, v ...interface{}) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if logLevel <= Debug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if logLevel <= Info {
		log.Printf("[INFO] "+format, v...)
	}
}

func Warningf(format string, v ...interface{}) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if logLevel <= Warning {
		log.Printf("[WARN] "+format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if logLevel <= Error {
		log.Printf("[ERROR] "+format, v...)
	}
}

func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}
