package credential

import (
	"math"
	"testing"
)

func TestSampleAccredited(t *testing.T) {
	in := sampleInput(t)
	if in.Subject != mustSubject(t, "0x1234567890123456789012345678901234567890") {
		t.Fatalf("subject %s", in.Subject)
	}
	if in.IssuedAt != testNow-86400 || in.ExpiresAt != testNow+31536000 || in.CurrentTime != testNow {
		t.Fatalf("window %d..%d at %d", in.IssuedAt, in.ExpiresAt, in.CurrentTime)
	}
	if _, err := Validate(in); err != nil {
		t.Fatalf("sample must validate: %v", err)
	}
}

func TestSampleAccredited_RejectsWrappingTimes(t *testing.T) {
	for _, now := range []uint64{0, 1, 86399, math.MaxUint64, math.MaxUint64 - 365*86400 + 1} {
		if _, err := SampleAccredited(now); err == nil {
			t.Fatalf("now=%d: expected error", now)
		}
	}
	for _, now := range []uint64{86400, math.MaxUint64 - 365*86400} {
		if _, err := SampleAccredited(now); err != nil {
			t.Fatalf("now=%d: %v", now, err)
		}
	}
}
