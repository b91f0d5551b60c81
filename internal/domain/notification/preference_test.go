package notification

import "testing"

func TestDefaultPreference(t *testing.T) {
	p := DefaultPreference(42)
	if p.UserID != 42 {
		t.Fatalf("user id = %d, want 42", p.UserID)
	}

	for _, typ := range AllTypes() {
		if !p.Enabled(typ, ChannelApp) {
			t.Errorf("%s/app should default on", typ)
		}
		wantEmail := typ == TypeSecurity
		if got := p.Enabled(typ, ChannelEmail); got != wantEmail {
			t.Errorf("%s/email default = %v, want %v", typ, got, wantEmail)
		}
	}
}

func TestSecurityAppAlwaysEnabled(t *testing.T) {
	p := DefaultPreference(1)
	if !p.Set(TypeSecurity, ChannelApp, false) {
		t.Fatal("security/app is a known pair and Set should accept it")
	}
	if !p.Enabled(TypeSecurity, ChannelApp) {
		t.Fatal("security/app must stay effective regardless of the stored value")
	}
	// The stored field does flip; only the effective view is pinned.
	if p.SecurityApp {
		t.Error("expected the stored security/app field off")
	}
}

func TestSetAndEnabled(t *testing.T) {
	p := DefaultPreference(1)

	if !p.Set(TypeBudget, ChannelEmail, true) {
		t.Fatal("budget/email is a known pair")
	}
	if !p.Enabled(TypeBudget, ChannelEmail) {
		t.Error("expected budget/email on after Set")
	}

	if !p.Set(TypeGoal, ChannelApp, false) {
		t.Fatal("goal/app is a known pair")
	}
	if p.Enabled(TypeGoal, ChannelApp) {
		t.Error("expected goal/app off after Set")
	}
}

func TestUnknownPairRejected(t *testing.T) {
	p := DefaultPreference(1)
	if p.Set(Type("BOGUS"), ChannelEmail, true) {
		t.Error("unknown type must be rejected")
	}
	if p.Set(TypeBudget, Channel("sms"), true) {
		t.Error("unknown channel must be rejected")
	}
	if p.Enabled(Type("BOGUS"), ChannelApp) {
		t.Error("unknown pairs are never enabled")
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range AllTypes() {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("BOGUS").Valid() {
		t.Error("BOGUS should not be valid")
	}
}
