package core

// Logger is any service that can report app events.
// args may hold an error, a map[string]interface{} of extras and the acting user profile.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
