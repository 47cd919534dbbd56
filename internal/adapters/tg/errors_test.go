package tg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantIs   error
		wantWait int
		flood    bool
	}{
		{name: "too many requests", err: errors.New("429 Too Many Requests: retry after 35"), flood: true, wantWait: 35},
		{name: "flood wait marker", err: errors.New("420 FLOOD_WAIT_120"), flood: true, wantWait: 120},
		{name: "429 without seconds", err: errors.New("429 Too Many Requests"), flood: true, wantWait: 0},
		{name: "already participant", err: errors.New("400 USER_ALREADY_PARTICIPANT"), wantIs: ports.ErrAlreadyMember},
		{name: "invite expired", err: errors.New("400 INVITE_HASH_EXPIRED"), wantIs: ports.ErrInvalidOrExpired},
		{name: "invite invalid", err: errors.New("400 INVITE_HASH_INVALID"), wantIs: ports.ErrInvalidOrExpired},
		{name: "channel private", err: errors.New("400 CHANNEL_PRIVATE"), wantIs: ports.ErrInvalidOrExpired},
		{name: "banned", err: errors.New("400 USER_BANNED_IN_CHANNEL"), wantIs: ports.ErrBanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if tt.flood {
				var flood *ports.FloodWaitError
				require.ErrorAs(t, got, &flood)
				assert.Equal(t, tt.wantWait, flood.Seconds)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}
}

func TestClassifyErrorPassesThroughUnknown(t *testing.T) {
	orig := errors.New("400 USERNAME_NOT_OCCUPIED")
	assert.Same(t, orig, classifyError(orig))
	assert.NoError(t, classifyError(nil))
}

func TestParseTdError(t *testing.T) {
	code, msg := parseTdError(errors.New("400 CHANNEL_PRIVATE"))
	assert.Equal(t, 400, code)
	assert.Equal(t, "CHANNEL_PRIVATE", msg)

	code, msg = parseTdError(errors.New("connection reset"))
	assert.Zero(t, code)
	assert.Equal(t, "connection reset", msg)
}
