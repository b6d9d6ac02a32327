package obslog

import "time"

// Level is a log severity.
type Level int

// Levels start at 1 so the zero value means "unset" and config defaults
// never shadow an explicitly chosen level.
const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a string level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// HTTPInfo describes the HTTP side of an instrumented call.
type HTTPInfo struct {
	Method     string  `json:"method"`
	URL        string  `json:"url"`
	StatusCode int     `json:"statusCode,omitempty"`
	DurationMS float64 `json:"durationMs"`
	Error      string  `json:"error,omitempty"`
}

// BrokerInfo describes the broker side of an instrumented operation.
type BrokerInfo struct {
	Instance   string  `json:"instance,omitempty"`
	Topic      string  `json:"topic"`
	Operation  string  `json:"operation"`
	Outcome    string  `json:"outcome,omitempty"`
	DurationMS float64 `json:"durationMs,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Entry is the log entry shape consumed by external transports.
type Entry struct {
	Level         Level
	Msg           string
	Timestamp     time.Time
	Service       string
	CorrelationID string
	TransactionID string
	HTTP          *HTTPInfo
	Broker        *BrokerInfo
	Payload       any
}

// Field is one key/value pair attached to a convenience log call; fields
// are collected into the entry payload and masked with it.
type Field struct {
	Key   string
	Value any
}
