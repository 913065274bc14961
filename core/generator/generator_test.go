package generator

import (
	"reflect"
	"testing"
)

func TestSameSeedSameInstance(t *testing.T) {
	a, err := New(Config{Seed: 42})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, _ := New(Config{Seed: 42})
	if !reflect.DeepEqual(a.Random(), b.Random()) {
		t.Fatalf("same seed produced different instances")
	}
	c, _ := New(Config{Seed: 43})
	if reflect.DeepEqual(a.Instance(10, 2), c.Instance(10, 2)) {
		t.Fatalf("different seeds produced identical instances")
	}
}

func TestRandomWithinRanges(t *testing.T) {
	g, err := New(Config{Seed: 7})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for k := 0; k < 200; k++ {
		in := g.Random()
		if err := in.Validate(); err != nil {
			t.Fatalf("invalid instance: %v", err)
		}
		n := len(in.Devices)
		if n < 2 || n > 25 {
			t.Fatalf("device count %d out of range", n)
		}
		maxS := n / 4
		if maxS < 1 {
			maxS = 1
		}
		if in.Sockets < 1 || in.Sockets > maxS {
			t.Fatalf("socket count %d out of range for %d devices", in.Sockets, n)
		}
		if in.SlotCount() != 12 {
			t.Fatalf("expected 12 slots, got %d", in.SlotCount())
		}
		for _, d := range in.Devices {
			if d.RechargeRate < 25 || d.RechargeRate > 50 || d.DischargeRate < 20 || d.DischargeRate > 35 ||
				d.InitialBattery < 10 || d.InitialBattery > 80 {
				t.Fatalf("device out of range: %+v", d)
			}
		}
	}
}

func TestDeviceIDs(t *testing.T) {
	g, _ := New(Config{Seed: 1})
	ds := g.Devices(3)
	if ds[0].ID != "dev0001" || ds[2].ID != "dev0003" {
		t.Fatalf("unexpected ids: %s %s", ds[0].ID, ds[2].ID)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []Config{
		{MinDevices: 5, MaxDevices: 3},
		{RechargeRate: Range{Min: 10, Max: 5}},
		{DischargeRate: Range{Min: -1, Max: 5}},
		{InitialBattery: Range{Min: 10, Max: 120}},
	}
	for i, c := range cases {
		if _, err := New(c); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
