package realtime

import (
	"strings"

	"github.com/google/uuid"
)

type Event string

const (
	EventLiveSessionStarted Event = "LiveSessionStarted"
	EventLiveSessionEnded   Event = "LiveSessionEnded"
	EventLiveSlideChanged   Event = "LiveSlideChanged"
	EventLiveTimerStarted   Event = "LiveTimerStarted"
	EventLiveTimerStopped   Event = "LiveTimerStopped"
	EventLiveParticipant    Event = "LiveParticipantJoined"
	EventLiveCheckin        Event = "LiveCheckin"
	EventLiveLeaderboard    Event = "LiveLeaderboard"
	EventProfileRecomputed  Event = "StudentProfileRecomputed"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// SessionChannel is the channel every client watching a live session subscribes to.
func SessionChannel(sessionID uuid.UUID) string {
	return "live:" + sessionID.String()
}

// UserChannel carries events addressed to a single user.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func validChannel(ch string) bool {
	return strings.TrimSpace(ch) != ""
}
