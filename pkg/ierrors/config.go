package ierrors

// ConfigError marks a nonsensical caller-supplied option.
type ConfigError struct {
	*baseError
	field    string
	provided any
}

// NewConfigError creates a new ConfigError.
func NewConfigError(msg string) *ConfigError {
	return &ConfigError{baseError: NewBaseError(nil, ErrorCodeInvalidConfig, msg)}
}

// WithField records which option field failed validation.
func (e *ConfigError) WithField(field string) *ConfigError {
	e.field = field
	return e
}

// WithProvided records the value the caller supplied.
func (e *ConfigError) WithProvided(value any) *ConfigError {
	e.provided = value
	return e
}

// Field returns the option field that failed validation.
func (e *ConfigError) Field() string { return e.field }

// Provided returns the value the caller supplied.
func (e *ConfigError) Provided() any { return e.provided }
