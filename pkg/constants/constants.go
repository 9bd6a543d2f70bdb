package constants

type ContextKey int

const (
	LoggerKey ContextKey = iota
	RequestStart
	AppKey
)
