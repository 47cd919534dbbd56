package tg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zelenin/go-tdlib/client"
)

func TestIsMemberStatus(t *testing.T) {
	tests := []struct {
		name   string
		status client.ChatMemberStatus
		want   bool
	}{
		{name: "member", status: &client.ChatMemberStatusMember{}, want: true},
		{name: "administrator", status: &client.ChatMemberStatusAdministrator{}, want: true},
		{name: "creator", status: &client.ChatMemberStatusCreator{IsMember: true}, want: true},
		{name: "restricted member", status: &client.ChatMemberStatusRestricted{IsMember: true}, want: true},
		{name: "restricted outsider", status: &client.ChatMemberStatusRestricted{IsMember: false}, want: false},
		{name: "left", status: &client.ChatMemberStatusLeft{}, want: false},
		{name: "banned", status: &client.ChatMemberStatusBanned{}, want: false},
		{name: "nil", status: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isMemberStatus(tt.status))
		})
	}
}
