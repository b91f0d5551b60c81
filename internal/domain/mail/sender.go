package mail

// Sender defines an interface for delivering notification emails.
// This decouples the dispatcher from the SMTP client so tests can stub it.
type Sender interface {
	// Send delivers an HTML email. Failures are channel-local: callers log
	// and continue, they never roll back in-app persistence.
	Send(to string, subject string, htmlBody string) error
	// IsConfigured reports whether the sender has working delivery settings.
	// An unconfigured sender degrades dispatch to app-only delivery.
	IsConfigured() bool
}
