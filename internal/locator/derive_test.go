package locator

import (
	"bytes"
	"errors"
	"testing"
)

var testProgram = MustParseAddress("B5XNLjvDHkacwCASVVpo1EGK9L4AA7c7WdmX5qFrKLGH")

func TestDeriveKnownVectors(t *testing.T) {
	tests := []struct {
		key  uint64
		addr string
		tag  byte
	}{
		{key: 0, addr: "7ezX3hw4GxMsm86DphUfzRCfhfyEQ18rpMPbjQbA3bPz", tag: 255},
		{key: 7, addr: "4grJakd6bXwYo8Vt7kG1sgxt8CY8D2vBJALCSRL4e4h7", tag: 255},
		{key: 42, addr: "GCrq8ZeKtV5Pkxdp2XHBUsS3sSU2j2BFaqfZYGe5LtEF", tag: 254},
	}
	l := New(testProgram)
	for _, tt := range tests {
		addr, tag, err := l.Derive(tt.key)
		if err != nil {
			t.Fatalf("derive %d: %v", tt.key, err)
		}
		if addr.String() != tt.addr || tag != tt.tag {
			t.Errorf("derive %d = %s/%d, want %s/%d", tt.key, addr, tag, tt.addr, tt.tag)
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	l := New(testProgram)
	for _, key := range []uint64{0, 1, 42, 1 << 40, ^uint64(0)} {
		a1, t1, err := l.Derive(key)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		a2, t2, err := l.Derive(key)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if a1 != a2 || t1 != t2 {
			t.Fatalf("key %d derived twice differently", key)
		}
	}
}

func TestDeriveDistinctKeys(t *testing.T) {
	l := New(testProgram)
	seen := make(map[Address]uint64)
	for key := uint64(0); key < 512; key++ {
		addr, _, err := l.Derive(key)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if prev, ok := seen[addr]; ok {
			t.Fatalf("keys %d and %d collide at %s", prev, key, addr)
		}
		seen[addr] = key
	}
}

func TestDeriveDependsOnProgram(t *testing.T) {
	other := testProgram
	other[0] ^= 0x01
	a1, _, _ := New(testProgram).Derive(9)
	a2, _, _ := New(other).Derive(9)
	if a1 == a2 {
		t.Fatalf("different programs must derive different addresses")
	}
}

func TestVerify(t *testing.T) {
	l := New(testProgram)
	addr, tag, err := l.Derive(42)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !l.Verify(42, tag, addr) {
		t.Fatalf("verify should accept the derived pair")
	}
	if l.Verify(43, tag, addr) {
		t.Fatalf("verify must reject a different key")
	}
	if l.Verify(42, tag-1, addr) {
		t.Fatalf("verify must reject a different tag")
	}
}

func TestCreateAddressSeedLimits(t *testing.T) {
	if _, err := CreateAddress(testProgram, 255, bytes.Repeat([]byte{1}, MaxSeedLen+1)); !errors.Is(err, ErrMaxSeedLength) {
		t.Fatalf("expected ErrMaxSeedLength for long seed, got %v", err)
	}
	seeds := make([][]byte, MaxSeeds)
	if _, err := CreateAddress(testProgram, 255, seeds...); !errors.Is(err, ErrMaxSeedLength) {
		t.Fatalf("expected ErrMaxSeedLength for seed count, got %v", err)
	}
}

func TestCreateAddressOnCurveRejected(t *testing.T) {
	// key 42 skips bump 255 because that hash is a curve point
	if _, err := CreateAddress(testProgram, 255, KeySeeds(42)...); !errors.Is(err, ErrInvalidSeeds) {
		t.Fatalf("expected ErrInvalidSeeds, got %v", err)
	}
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress(testProgram.String())
	if err != nil || a != testProgram {
		t.Fatalf("parse roundtrip: %v", err)
	}
	if _, err := ParseAddress("abc"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := ParseAddress("0OIl"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for bad alphabet, got %v", err)
	}
}
