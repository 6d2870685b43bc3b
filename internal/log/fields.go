package log

import "fintrack/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldMonth       = "month"
	FieldDate        = "date"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldFile        = "file"
	FieldSkipped     = "skipped"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentBudget    = "budget"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentDashboard = "dashboard"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpAppend   = "append"
	OpSetLimit = "set_budget"
	OpReport   = "report"
	OpSync     = "sync"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields builds slog key/value pairs in a fixed order.
type Fields []any

// NewFields creates an empty field list.
func NewFields() Fields { return Fields{} }

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithOperation(op string) Fields {
	return f.With(FieldOperation, op)
}

func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.With(FieldError, err.Error())
}

func (f Fields) WithMonth(m core.Month) Fields {
	return f.With(FieldMonth, m.String())
}

// WithTransaction adds the identifying fields of tx. Descriptions are left
// out; they are free text typed by the user.
func (f Fields) WithTransaction(tx core.Transaction) Fields {
	return f.
		With(FieldDate, tx.Date.String()).
		With(FieldKind, string(tx.Kind)).
		With(FieldCategory, tx.Category).
		With(FieldAmountCents, tx.Amount.Cents)
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	return f.
		With(FieldMethod, method).
		With(FieldPath, path).
		With(FieldQuery, query).
		With(FieldUserAgent, userAgent)
}

func (f Fields) WithHTTPResponse(statusCode int, durationMs int64) Fields {
	return f.
		With(FieldStatusCode, statusCode).
		With(FieldDuration, durationMs)
}
