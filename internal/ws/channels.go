package ws

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	userChannelPrefix  = "user:"
	groupChannelPrefix = "group:"
)

// UserChannel returns the personal channel name for a user
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// GroupChannel returns the broadcast channel name for a study group
func GroupChannel(groupID int64) string {
	return fmt.Sprintf("%s%d", groupChannelPrefix, groupID)
}

// ParseGroupChannel extracts the group ID from a "group:<id>" channel
// name. Returns false for any other channel.
func ParseGroupChannel(channel string) (int64, bool) {
	raw, ok := strings.CutPrefix(channel, groupChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
