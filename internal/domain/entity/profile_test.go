package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuddyPairValid(t *testing.T) {
	pending := func(initiator bool) *BuddyEntry {
		return &BuddyEntry{Status: BuddyStatusPending, Initiator: initiator}
	}
	accepted := func(initiator bool) *BuddyEntry {
		return &BuddyEntry{Status: BuddyStatusAccepted, Initiator: initiator}
	}

	cases := []struct {
		name string
		a, b *BuddyEntry
		want bool
	}{
		{"both absent", nil, nil, true},
		{"one side missing", pending(true), nil, false},
		{"pending with one initiator", pending(true), pending(false), true},
		{"pending with two initiators", pending(true), pending(true), false},
		{"pending with no initiator", pending(false), pending(false), false},
		{"both accepted", accepted(true), accepted(false), true},
		{"mismatched status", pending(true), accepted(false), false},
		{"both rejected is not a resting state", &BuddyEntry{Status: BuddyStatusRejected}, &BuddyEntry{Status: BuddyStatusRejected}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuddyPairValid(tc.a, tc.b))
		})
	}
}
