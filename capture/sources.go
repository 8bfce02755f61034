package capture

// Sources are the resolved capture endpoints for a session.
type Sources struct {
	// Mic is the microphone source name.
	Mic string
	// Monitor is the system-audio loopback source name.
	Monitor string
}
