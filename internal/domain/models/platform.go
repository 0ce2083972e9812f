package models

type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformThreads   Platform = "threads"
)

// PlatformProfile is the static per-platform generation profile. Profiles are
// defined at package init and never mutated.
type PlatformProfile struct {
	DisplayName   string
	MaxLength     int
	HashtagBudget int
	Tone          string
	Guidelines    string
}

var PlatformProfiles = map[Platform]PlatformProfile{
	PlatformTwitter: {
		DisplayName:   "Twitter/X",
		MaxLength:     280,
		HashtagBudget: 3,
		Tone:          "concise and punchy",
		Guidelines: `- Maximum 280 characters including hashtags
- The first sentence must hook the reader
- 2-3 hashtags at the end
- 1-2 emojis where they fit
- Hint that a thread could follow if the topic is bigger`,
	},
	PlatformLinkedIn: {
		DisplayName:   "LinkedIn",
		MaxLength:     3000,
		HashtagBudget: 5,
		Tone:          "professional and insightful",
		Guidelines: `- Maximum 3000 characters
- Open with a hook line (the part visible before "see more")
- Structure into 3-5 short paragraphs
- Include a personal take or experience
- 3-5 hashtags at the end
- Professional but approachable voice
- Close with a call to action`,
	},
	PlatformInstagram: {
		DisplayName:   "Instagram",
		MaxLength:     2200,
		HashtagBudget: 30,
		Tone:          "emotional and visual",
		Guidelines: `- Maximum 2200 characters of caption
- Use emojis generously (1-2 per paragraph)
- Storytelling format
- The first line matters (shown before "more")
- 20-30 hashtags in a separate block
- Suggest accounts worth tagging
- Friendly, casual voice`,
	},
	PlatformFacebook: {
		DisplayName:   "Facebook",
		MaxLength:     2000,
		HashtagBudget: 3,
		Tone:          "casual and conversational",
		Guidelines: `- 500-1500 characters works best
- Write like you are talking to a friend
- Invite engagement with a question
- Emojis in moderation
- 1-3 hashtags, optional
- Share it as a story or experience`,
	},
	PlatformThreads: {
		DisplayName:   "Threads",
		MaxLength:     500,
		HashtagBudget: 0,
		Tone:          "conversational and short",
		Guidelines: `- Maximum 500 characters
- Very short, essentials only
- Conversational, like texting a friend
- No hashtags
- 1-2 emojis
- Lead with an opinion or a thought`,
	},
}

// KnownPlatforms lists the supported platform ids in presentation order.
var KnownPlatforms = []Platform{
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformFacebook,
	PlatformThreads,
}

func IsKnownPlatform(p Platform) bool {
	_, ok := PlatformProfiles[p]
	return ok
}

// FilterPlatforms drops unknown ids and duplicates, preserving the
// caller-submitted order.
func FilterPlatforms(requested []Platform) []Platform {
	seen := make(map[Platform]bool, len(requested))
	valid := make([]Platform, 0, len(requested))
	for _, p := range requested {
		if !IsKnownPlatform(p) || seen[p] {
			continue
		}
		seen[p] = true
		valid = append(valid, p)
	}
	return valid
}
