package cos

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenUUIDUnique(t *testing.T) {
	a, b := GenUUID(), GenUUID()
	if a == "" || b == "" {
		t.Fatal("GenUUID returned an empty string")
	}
	if a == b {
		t.Errorf("two calls to GenUUID returned the same id: %q", a)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("test_controller")
	b := Fingerprint("test_controller")
	if a != b {
		t.Errorf("Fingerprint is not deterministic: %q != %q", a, b)
	}
	if Fingerprint("other_channel") == a {
		t.Errorf("Fingerprint collided for distinct inputs")
	}
}

func TestErrsDedupsAndCaps(t *testing.T) {
	var errs Errs
	errs.Add(errors.New("boom"))
	errs.Add(errors.New("boom")) // duplicate message, should not double-count
	errs.Add(errors.New("bang"))

	if errs.Cnt() != 2 {
		t.Errorf("Cnt() = %d, want 2", errs.Cnt())
	}
	for i := 0; i < maxErrs+5; i++ {
		errs.Add(fmt.Errorf("unique error %d", i))
	}
	if errs.Cnt() > maxErrs {
		t.Errorf("Cnt() = %d, exceeds maxErrs %d", errs.Cnt(), maxErrs)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1) != "" {
		t.Errorf("Plural(1) should be empty")
	}
	if Plural(0) != "s" || Plural(2) != "s" {
		t.Errorf("Plural(0)/Plural(2) should be \"s\"")
	}
}
