package audit

import (
	"context"
	"encoding/json"
	"time"
)

const (
	StageRequest  = "request"
	StageResponse = "response"
)

// Entry is one persisted request or response record. RequestID joins the
// two stages of a single request and matches the X-Request-ID header.
type Entry struct {
	ID            string            `json:"id" bson:"_id" db:"id"`
	RequestID     string            `json:"request_id" bson:"request_id" db:"request_id"`
	Stage         string            `json:"stage" bson:"stage" db:"stage"`
	Timestamp     time.Time         `json:"timestamp" bson:"timestamp" db:"timestamp"`
	Method        string            `json:"method,omitempty" bson:"method,omitempty" db:"method"`
	URL           string            `json:"url,omitempty" bson:"url,omitempty" db:"url"`
	Path          string            `json:"path,omitempty" bson:"path,omitempty" db:"path"`
	PathParams    map[string]string `json:"path_params,omitempty" bson:"path_params,omitempty" db:"path_params"`
	QueryParams   map[string]string `json:"query_params,omitempty" bson:"query_params,omitempty" db:"query_params"`
	Headers       map[string]string `json:"headers,omitempty" bson:"headers,omitempty" db:"headers"`
	Body          json.RawMessage   `json:"body,omitempty" bson:"body,omitempty" db:"body"`
	ClientIP      string            `json:"client_ip,omitempty" bson:"client_ip,omitempty" db:"client_ip"`
	UserAgent     string            `json:"user_agent,omitempty" bson:"user_agent,omitempty" db:"user_agent"`
	StatusCode    int               `json:"status_code,omitempty" bson:"status_code,omitempty" db:"status_code"`
	Duration      time.Duration     `json:"duration,omitempty" bson:"duration,omitempty" db:"duration"`
	ContentLength int64             `json:"content_length,omitempty" bson:"content_length,omitempty" db:"content_length"`
	Error         string            `json:"error,omitempty" bson:"error,omitempty" db:"error"`
}

// Repository persists audit entries. Implementations live under
// internal/repository.
type Repository interface {
	SaveEntries(ctx context.Context, entries []*Entry) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
