package rabbitmq_common

// Logger - логгер пакета в стиле key/value, чтобы не тянуть сюда порты сервиса.
// Сервис подключает свой логгер через мост.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{})            {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})             {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})             {}
func (noopLogger) Error(err error, msg string, keysAndValues ...interface{}) {}

func NewNoopLogger() Logger {
	return noopLogger{}
}
