package queue

import "testing"

func TestClassifyCrowd(t *testing.T) {
	cases := []struct {
		booked   int
		level    string
		waitTime string
		barClass string
	}{
		{0, CrowdLow, "5–10 mins", "bg-emerald-500"},
		{4, CrowdLow, "5–10 mins", "bg-emerald-500"},
		{5, CrowdMedium, "15–30 mins", "bg-amber-500"},
		{9, CrowdMedium, "15–30 mins", "bg-amber-500"},
		{10, CrowdHigh, "45+ mins", "bg-rose-500"},
		{42, CrowdHigh, "45+ mins", "bg-rose-500"},
	}

	for _, tc := range cases {
		got := ClassifyCrowd(tc.booked)
		if got.Level != tc.level {
			t.Errorf("ClassifyCrowd(%d).Level = %s, want %s", tc.booked, got.Level, tc.level)
		}
		if got.WaitTime != tc.waitTime {
			t.Errorf("ClassifyCrowd(%d).WaitTime = %s, want %s", tc.booked, got.WaitTime, tc.waitTime)
		}
		if got.BarClass != tc.barClass {
			t.Errorf("ClassifyCrowd(%d).BarClass = %s, want %s", tc.booked, got.BarClass, tc.barClass)
		}
	}
}

func TestClassifyCrowd_BadgeClasses(t *testing.T) {
	if got := ClassifyCrowd(3).BadgeClass; got != "bg-emerald-100 text-emerald-700" {
		t.Fatalf("unexpected low badge class %q", got)
	}
	if got := ClassifyCrowd(7).BadgeClass; got != "bg-amber-100 text-amber-700" {
		t.Fatalf("unexpected medium badge class %q", got)
	}
	if got := ClassifyCrowd(15).BadgeClass; got != "bg-rose-100 text-rose-700" {
		t.Fatalf("unexpected high badge class %q", got)
	}
}
