// ABOUTME: Server-push notification event envelope and known event payloads
// ABOUTME: Events arrive as {type, data} JSON lines on the notification stream

package api

import "encoding/json"

// Known notification event types.
const (
	EventAchievementUnlocked = "achievement_unlocked"
)

// NotificationEvent is the envelope for every server-push event. Data is left
// raw so unknown types can be carried through without a schema.
type NotificationEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AchievementUnlocked is the payload of an achievement_unlocked event.
type AchievementUnlocked struct {
	UserID        int    `json:"user_id"`
	AchievementID int    `json:"achievement_id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	XPReward      int    `json:"xp_reward"`
	IconURL       string `json:"icon_url"`
}
