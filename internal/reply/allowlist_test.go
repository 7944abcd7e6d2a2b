package reply

import "testing"

func TestAllowList_NilDeniesAll(t *testing.T) {
	var a *AllowList
	if a.IsAllowed(1, 1) {
		t.Error("nil AllowList should deny")
	}
}

func TestAllowList_EmptyDeniesAll(t *testing.T) {
	a := NewAllowList(nil, nil)
	if a.IsAllowed(1, 1) {
		t.Error("empty AllowList should deny")
	}
}

func TestAllowList(t *testing.T) {
	a := NewAllowList([]int64{100}, []int64{-200})
	tests := []struct {
		name   string
		user   int64
		chat   int64
		expect bool
	}{
		{"listed user in private chat", 100, 100, true},
		{"listed user in other group", 100, -999, true},
		{"unlisted user in listed group", 5, -200, true},
		{"unlisted user elsewhere", 5, 5, false},
		{"no sender", 0, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.IsAllowed(tt.user, tt.chat); got != tt.expect {
				t.Errorf("IsAllowed(%d, %d) = %v, want %v", tt.user, tt.chat, got, tt.expect)
			}
		})
	}
}
