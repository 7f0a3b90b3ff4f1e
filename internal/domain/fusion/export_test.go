package fusion

// Normalization helpers exposed for tests.
var (
	MinMaxVector  = minMaxVector
	MinMaxColumns = minMaxColumns
)
