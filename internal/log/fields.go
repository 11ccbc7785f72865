package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTemplateID    = "template_id"
	FieldTransactionID = "transaction_id"
	FieldName          = "name"
	FieldAmountCents   = "amount_cents"
	FieldDayKey        = "day_key"
	FieldOpening       = "opening_cents"
	FieldClosing       = "closing_cents"
	FieldBackend       = "backend"
	FieldKey           = "key"
	FieldRows          = "rows"
	FieldSink          = "sink"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentPersist = "persist"
	ComponentCSV     = "csv"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSink    = "sink"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpAddTemplate       = "add_template"
	OpUpdateTemplate    = "update_template"
	OpRemoveTemplate    = "remove_template"
	OpAddTransaction    = "add_transaction"
	OpUpdateTransaction = "update_transaction"
	OpRemoveTransaction = "remove_transaction"
	OpMoveTransaction   = "move_transaction"
	OpSetOpening        = "set_opening"
	OpSetRange          = "set_range"
	OpSetSaveProgress   = "set_save_progress"
	OpReset             = "reset"
	OpImport            = "import"
	OpExport            = "export"
	OpSnapshot          = "snapshot"
	OpStartup           = "startup"
	OpShutdown          = "shutdown"
)
