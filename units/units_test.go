package units

import "testing"

func TestPercentageRoundTrip(t *testing.T) {
	cases := []float32{0, 0.125, 50, 99.875, 100}
	for _, v := range cases {
		p, err := NewPercentage(v)
		if err != nil {
			t.Fatalf("NewPercentage(%v): %v", v, err)
		}
		got := PercentageFromRaw(p.Raw()).Float()
		if got != v {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}

func TestPercentageOutOfRange(t *testing.T) {
	if _, err := NewPercentage(-1); err == nil {
		t.Error("expected error for negative percentage")
	}
	if _, err := NewPercentage(100.5); err == nil {
		t.Error("expected error for percentage above 100")
	}
}

func TestRpmIntoPercentage(t *testing.T) {
	r, err := NewRpm(2000, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.IntoPercentage().Float(); got != 50 {
		t.Errorf("got %v, want 50", got)
	}
}

func TestRpmInvalid(t *testing.T) {
	if _, err := NewRpm(100, 200); err == nil {
		t.Error("expected error when current exceeds max")
	}
}

func TestRpmZeroMax(t *testing.T) {
	r, _ := NewRpm(0, 0)
	if got := r.IntoPercentage().Float(); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestValveStateFromSense(t *testing.T) {
	cases := []struct {
		openHi, closeHi bool
		want            ValveState
	}{
		{true, false, ValveOpen},
		{false, true, ValveClosed},
		{true, true, ValveUnknown},
		{false, false, ValveUnknown},
	}
	for _, c := range cases {
		if got := ValveStateFromSense(c.openHi, c.closeHi); got != c.want {
			t.Errorf("ValveStateFromSense(%v,%v) = %v, want %v", c.openHi, c.closeHi, got, c.want)
		}
	}
}

func TestValveDriveTarget(t *testing.T) {
	cases := []struct {
		in, want ValveState
	}{
		{ValveOpening, ValveOpen},
		{ValveClosing, ValveClosed},
		{ValveUnknown, ValveOpen},
		{ValveOpen, ValveOpen},
		{ValveClosed, ValveClosed},
	}
	for _, c := range cases {
		if got := c.in.DriveTarget(); got != c.want {
			t.Errorf("%v.DriveTarget() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTemperatureOutOfRange(t *testing.T) {
	if _, err := NewTemperature(150); err == nil {
		t.Error("expected error above 100")
	}
	if _, err := NewTemperature(-40); err != nil {
		t.Errorf("unexpected error for sub-zero reading: %v", err)
	}
}
