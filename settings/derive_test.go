package settings

import "testing"

func TestDeriveTable(t *testing.T) {
	cases := []struct {
		style    string
		autohide bool
		want     Backend
	}{
		{StyleNone, false, Backend{false, false, ModeOff}},
		{StyleNone, true, Backend{false, false, ModeOff}},
		{StyleTraditional, false, Backend{true, false, ModeOff}},
		{StyleTraditional, true, Backend{true, false, ModeOff}},
		{StyleApplet, true, Backend{false, true, ModePopup}},
		{StyleApplet, false, Backend{false, true, ModePersistent}},
	}
	for _, c := range cases {
		got := Derive(User{Style: c.style, Autohide: c.autohide})
		if got != c.want {
			t.Errorf("Derive(%s, autohide=%v) = %+v, want %+v", c.style, c.autohide, got, c.want)
		}
	}
}

func TestDeriveIsPure(t *testing.T) {
	u := User{Style: StyleApplet, Autohide: false}
	first := Derive(u)
	// Interleave unrelated calls; output for u must not move.
	Derive(User{Style: StyleNone})
	Derive(User{Style: StyleTraditional, Autohide: true})
	if got := Derive(u); got != first {
		t.Errorf("Derive not referentially transparent: %+v then %+v", first, got)
	}
}

func TestInferRoundTrip(t *testing.T) {
	for _, u := range []User{
		{Style: StyleNone},
		{Style: StyleTraditional},
		{Style: StyleApplet, Autohide: true},
		{Style: StyleApplet, Autohide: false},
	} {
		got, ok := Infer(Derive(u))
		if !ok {
			t.Fatalf("Infer(Derive(%+v)) found no match", u)
		}
		if got.Style != u.Style {
			t.Errorf("round trip %+v -> %+v", u, got)
		}
		if u.Style == StyleApplet && got.Autohide != u.Autohide {
			t.Errorf("round trip lost autohide: %+v -> %+v", u, got)
		}
	}
}

func TestInferNoMatch(t *testing.T) {
	// progress window and indicator dialog together match no table row
	_, ok := Infer(Backend{ShowProgressWindow: true, ShowIndicatorDialog: true, Mode: ModePopup})
	if ok {
		t.Error("expected no match for contradictory backend combination")
	}
}
