package backend

import "testing"

func TestCapabilitySupports(t *testing.T) {
	tests := []struct {
		c, o Capability
		want bool
	}{
		{CapabilityGeneral, CapabilityGeneral, true},
		{CapabilityGeneral, CapabilityGraphics, true},
		{CapabilityGeneral, CapabilityCompute, true},
		{CapabilityGeneral, CapabilityTransfer, true},
		{CapabilityGraphics, CapabilityGeneral, false},
		{CapabilityGraphics, CapabilityGraphics, true},
		{CapabilityGraphics, CapabilityCompute, false},
		{CapabilityGraphics, CapabilityTransfer, true},
		{CapabilityCompute, CapabilityGeneral, false},
		{CapabilityCompute, CapabilityGraphics, false},
		{CapabilityCompute, CapabilityCompute, true},
		{CapabilityCompute, CapabilityTransfer, true},
		{CapabilityTransfer, CapabilityGeneral, false},
		{CapabilityTransfer, CapabilityGraphics, false},
		{CapabilityTransfer, CapabilityCompute, false},
		{CapabilityTransfer, CapabilityTransfer, true},
	}
	for _, tt := range tests {
		if got := tt.c.Supports(tt.o); got != tt.want {
			t.Errorf("%v.Supports(%v) = %v, want %v", tt.c, tt.o, got, tt.want)
		}
	}
}

func TestCapabilityHelpers(t *testing.T) {
	if !CapabilityGeneral.SupportsGraphics() || !CapabilityGeneral.SupportsCompute() {
		t.Error("General must support graphics and compute")
	}
	if CapabilityCompute.SupportsGraphics() {
		t.Error("Compute must not support graphics")
	}
	if CapabilityGraphics.SupportsCompute() {
		t.Error("Graphics must not support compute")
	}
	for _, c := range []Capability{CapabilityTransfer, CapabilityCompute, CapabilityGraphics, CapabilityGeneral} {
		if !c.SupportsTransfer() {
			t.Errorf("%v must support transfer", c)
		}
	}
}

func TestCapabilityString(t *testing.T) {
	if got := CapabilityGraphics.String(); got != "Graphics" {
		t.Errorf("String() = %q, want %q", got, "Graphics")
	}
	if got := Capability(42).String(); got != "Unknown" {
		t.Errorf("String() = %q, want %q", got, "Unknown")
	}
}

func TestPresentModesHas(t *testing.T) {
	s := PresentModes(PresentModeFifo | PresentModeMailbox)
	if !s.Has(PresentModeFifo) || !s.Has(PresentModeMailbox) {
		t.Error("set should contain Fifo and Mailbox")
	}
	if s.Has(PresentModeImmediate) {
		t.Error("set should not contain Immediate")
	}
}
