package notification

// Channel is a delivery channel for notifications.
type Channel string

const (
	ChannelApp   Channel = "app"
	ChannelEmail Channel = "email"
)

// Preference holds one user's per-type, per-channel delivery switches as a
// typed field table. There is no stringly-typed "type_channel" lookup; access
// goes through Enabled/Set.
type Preference struct {
	ID     int64
	UserID int64

	SystemApp        bool
	SystemEmail      bool
	TransactionApp   bool
	TransactionEmail bool
	BudgetApp        bool
	BudgetEmail      bool
	GoalApp          bool
	GoalEmail        bool
	ReportApp        bool
	ReportEmail      bool
	SecurityApp      bool
	SecurityEmail    bool
	ReminderApp      bool
	ReminderEmail    bool
}

// DefaultPreference returns the defaults created for a user with no stored
// row: every type has the app channel on, and only security defaults email on.
func DefaultPreference(userID int64) *Preference {
	return &Preference{
		UserID:         userID,
		SystemApp:      true,
		TransactionApp: true,
		BudgetApp:      true,
		GoalApp:        true,
		ReportApp:      true,
		SecurityApp:    true,
		SecurityEmail:  true,
		ReminderApp:    true,
	}
}

// Enabled reports whether the given type may be surfaced on the given channel.
// The security/app pair is always on regardless of the stored value; this
// invariant is not overridable.
func (p *Preference) Enabled(t Type, c Channel) bool {
	if t == TypeSecurity && c == ChannelApp {
		return true
	}
	f := p.field(t, c)
	if f == nil {
		return false
	}
	return *f
}

// Set updates one (type, channel) switch. Setting security/app to false is
// accepted but has no effect on Enabled.
func (p *Preference) Set(t Type, c Channel, on bool) bool {
	f := p.field(t, c)
	if f == nil {
		return false
	}
	*f = on
	return true
}

func (p *Preference) field(t Type, c Channel) *bool {
	switch c {
	case ChannelApp:
		switch t {
		case TypeSystem:
			return &p.SystemApp
		case TypeTransaction:
			return &p.TransactionApp
		case TypeBudget:
			return &p.BudgetApp
		case TypeGoal:
			return &p.GoalApp
		case TypeReport:
			return &p.ReportApp
		case TypeSecurity:
			return &p.SecurityApp
		case TypeReminder:
			return &p.ReminderApp
		}
	case ChannelEmail:
		switch t {
		case TypeSystem:
			return &p.SystemEmail
		case TypeTransaction:
			return &p.TransactionEmail
		case TypeBudget:
			return &p.BudgetEmail
		case TypeGoal:
			return &p.GoalEmail
		case TypeReport:
			return &p.ReportEmail
		case TypeSecurity:
			return &p.SecurityEmail
		case TypeReminder:
			return &p.ReminderEmail
		}
	}
	return nil
}
