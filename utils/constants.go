package utils

const (
	// Accrual clock modes
	ClockShared    = "shared"
	ClockPerPerson = "per_person"

	// Defaults used when configuration leaves a value empty
	DefaultDailyRate = "250"
	DefaultRoster    = "Ali,Nasir"

	// HTTP status messages
	ErrInvalidRequest    = "Invalid request"
	ErrUnknownPayer      = "Unknown payer"
	ErrAmountRequired    = "amount is required"
	ErrInvalidTimestamp  = "Invalid timestamp"
	ErrExportUnavailable = "Failed to export payments"

	// Layout used when the server stamps a payment date
	DateLayout = "2006-01-02T15:04:05Z07:00"
)
