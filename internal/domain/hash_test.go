package domain

import "testing"

func TestSegmentHashStableUnderFloatNoise(t *testing.T) {
	base := SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentUserToRestaurant, -1, 0)
	if base == "" {
		t.Fatal("expected non-empty hash")
	}

	// Noise below the 6-decimal rounding threshold must not change identity.
	noisy := SegmentHash(33.448377+4e-7, -112.074037-4e-7, 33.451234+1e-9, -112.070001, SegmentUserToRestaurant, -1, 0)
	if noisy != base {
		t.Fatalf("hash changed under sub-precision noise: %q != %q", noisy, base)
	}

	baseKey := CacheKey(33.448377, -112.074037, 33.451234, -112.070001)
	noisyKey := CacheKey(33.448377+4e-7, -112.074037-4e-7, 33.451234, -112.070001+1e-9)
	if noisyKey != baseKey {
		t.Fatalf("cache key changed under sub-precision noise: %q != %q", noisyKey, baseKey)
	}
}

func TestSegmentHashChangesWithGeometry(t *testing.T) {
	base := SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentRestaurantToRestaurant, 0, 1)
	moved := SegmentHash(33.448378, -112.074037, 33.451234, -112.070001, SegmentRestaurantToRestaurant, 0, 1)
	if moved == base {
		t.Fatal("hash did not change when an endpoint moved by 1e-6 degrees")
	}
}

func TestSegmentHashSensitiveToTypeAndIndices(t *testing.T) {
	base := SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentRestaurantToRestaurant, 0, 1)

	cases := map[string]string{
		"type changed":      SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentRestaurantToCustomer, 0, 1),
		"fromIndex changed": SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentRestaurantToRestaurant, 2, 1),
		"toIndex changed":   SegmentHash(33.448377, -112.074037, 33.451234, -112.070001, SegmentRestaurantToRestaurant, 0, 3),
	}
	for name, h := range cases {
		if h == base {
			t.Errorf("%s: hash unchanged", name)
		}
	}

	// The cache key ignores type and indices entirely: physically identical
	// geometry shares one computation.
	key := CacheKey(33.448377, -112.074037, 33.451234, -112.070001)
	if key == "" {
		t.Fatal("expected non-empty cache key")
	}
	again := CacheKey(33.448377, -112.074037, 33.451234, -112.070001)
	if again != key {
		t.Fatalf("cache key not deterministic: %q != %q", again, key)
	}
}

func TestRoundCoord(t *testing.T) {
	if got := RoundCoord(33.4483774999); got != 33.448377 {
		t.Fatalf("RoundCoord = %v, want 33.448377", got)
	}
	if got := RoundCoord(-112.0740375001); got != -112.074038 {
		t.Fatalf("RoundCoord = %v, want -112.074038", got)
	}
}

func TestSegmentComplete(t *testing.T) {
	miles := 2.5
	s := Segment{DistanceMiles: &miles, DurationText: "6 mins"}
	if !s.Complete() {
		t.Fatal("segment with distance and duration text should be complete")
	}

	if (Segment{DistanceMiles: &miles}).Complete() {
		t.Fatal("segment without duration text must not be complete")
	}
	if (Segment{DurationText: "6 mins"}).Complete() {
		t.Fatal("segment without distance must not be complete")
	}
}
