package domain

import "time"

// Platform identifies the social network an observation was recorded on.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
)

// ParsePlatform converts a string to a Platform. The second return value is false for unknown platforms.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(s)
	return p, p.Valid()
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformInstagram, PlatformLinkedIn, PlatformFacebook, PlatformTikTok:
		return true
	default:
		return false
	}
}

// Observation is the engagement recorded for one past post. A zero Timestamp means "no timestamp".
type Observation struct {
	Timestamp       time.Time `json:"timestamp"`
	EngagementCount int64     `json:"engagement_count"`
	Platform        Platform  `json:"platform"`
}
