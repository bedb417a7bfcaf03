package service

import "testing"

func TestClockToMinutes(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"10:30", 630, false},
		{"23:59", 1439, false},
		{"9:00", 0, true},
		{"24:00", 0, true},
		{"10:60", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := clockToMinutes(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("clockToMinutes(%q) 应返回错误", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("clockToMinutes(%q) 不应返回错误: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("clockToMinutes(%q) 期望 %d，实际=%d", c.in, c.want, got)
		}
	}
}

func TestMinutesToClock(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{630, "10:30"},
		{1439, "23:59"},
	}
	for _, c := range cases {
		if got := minutesToClock(c.in); got != c.want {
			t.Errorf("minutesToClock(%d) 期望 %s，实际=%s", c.in, c.want, got)
		}
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2026-03-15", "2026-12-31"}
	for _, d := range valid {
		if !validDate(d) {
			t.Errorf("%q 应为合法日期", d)
		}
	}
	invalid := []string{"2026-13-01", "2026/03/15", "15-03-2026", "", "2026-02-30"}
	for _, d := range invalid {
		if validDate(d) {
			t.Errorf("%q 不应为合法日期", d)
		}
	}
}
