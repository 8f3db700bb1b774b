package ports

// Logger defines the interface for diagnostic logging. The component tag
// identifies the cache subsystem emitting the line (fingerprint, store,
// index, sweep, memo, app).
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Info(msg, component string)
	Warn(msg, component string)
	Error(err error, component string)
}
