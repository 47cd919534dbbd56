package tg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// TDLib отдаёт ошибки как "<code> <message>", например
// "429 Too Many Requests: retry after 35" или "400 USER_ALREADY_PARTICIPANT".
var (
	tdErrorRe   = regexp.MustCompile(`^(\d{3})\s+(.*)$`)
	floodWaitRe = regexp.MustCompile(`(?i)(?:retry after|FLOOD_WAIT_)\s*(\d+)`)
)

var (
	alreadyMemberMarkers = []string{"USER_ALREADY_PARTICIPANT"}
	invalidMarkers       = []string{"INVITE_HASH_EXPIRED", "INVITE_HASH_INVALID", "CHANNEL_PRIVATE"}
	bannedMarkers        = []string{"USER_BANNED_IN_CHANNEL"}
)

func parseTdError(err error) (code int, message string) {
	msg := strings.TrimSpace(err.Error())
	m := tdErrorRe.FindStringSubmatch(msg)
	if m == nil {
		return 0, msg
	}
	code, _ = strconv.Atoi(m[1])
	return code, m[2]
}

func isTooManyRequests(code int, message string) bool {
	// обычно Code == 429, но подстрахуемся по тексту
	if code == 429 {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "too many requests") || strings.Contains(lower, "flood_wait")
}

func floodWaitSeconds(message string) int {
	m := floodWaitRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// classifyError сводит ошибку TDLib к словарю ports.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	code, message := parseTdError(err)
	upper := strings.ToUpper(message)

	switch {
	case isTooManyRequests(code, message):
		return &ports.FloodWaitError{Seconds: floodWaitSeconds(message)}
	case containsAny(upper, alreadyMemberMarkers):
		return fmt.Errorf("%w: %s", ports.ErrAlreadyMember, message)
	case containsAny(upper, invalidMarkers):
		return fmt.Errorf("%w: %s", ports.ErrInvalidOrExpired, message)
	case containsAny(upper, bannedMarkers):
		return fmt.Errorf("%w: %s", ports.ErrBanned, message)
	default:
		return err
	}
}
