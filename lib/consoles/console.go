package consoles

type Console interface {
	Printf(format string, a ...any)

	// Debugf only prints when the console is verbose.
	Debugf(format string, a ...any)

	PushPrefix(format string, a ...any)
	PopPrefix()
}
