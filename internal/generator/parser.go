package generator

import (
	"regexp"
	"strings"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

// Hashtag token: leading # followed by word characters, ASCII or Hangul.
var hashtagPattern = regexp.MustCompile(`#[\w가-힣]+`)

// Overhead of the ellipsis marker and the blank line that separates the
// relocated hashtag block from the truncated body.
const ellipsisOverhead = 5 // len("...\n\n")

// ParseOutput normalizes a raw model reply into a bounded PlatformOutput.
// When the reply exceeds the profile's length cap, the body is truncated while
// the hashtag block is relocated to the end, keeping as many tags as the cap
// allows. Content never exceeds MaxLength.
func ParseOutput(raw string, profile models.PlatformProfile) models.PlatformOutput {
	hashtags := hashtagPattern.FindAllString(raw, -1)
	content := strings.TrimSpace(raw)

	if runeLen(content) > profile.MaxLength {
		joined := strings.Join(hashtags, " ")
		body := strings.TrimSpace(strings.Replace(content, joined, "", 1))

		// A hashtag block that cannot itself fit under the cap loses tags
		// from the end until it does; the length cap wins over hashtag
		// preservation.
		kept := hashtags
		for len(kept) > 0 && runeLen(strings.Join(kept, " ")) > profile.MaxLength-ellipsisOverhead {
			kept = kept[:len(kept)-1]
		}
		joined = strings.Join(kept, " ")

		budget := profile.MaxLength - runeLen(joined) - ellipsisOverhead
		if bodyRunes := []rune(body); len(bodyRunes) > budget {
			body = strings.TrimSpace(string(bodyRunes[:budget]))
		}

		if joined == "" {
			content = body + "..."
		} else {
			content = body + "...\n\n" + joined
		}
		hashtags = kept
	}

	stripped := make([]string, len(hashtags))
	for i, tag := range hashtags {
		stripped[i] = strings.TrimPrefix(tag, "#")
	}

	return models.PlatformOutput{
		Content:        content,
		Hashtags:       stripped,
		CharacterCount: runeLen(content),
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
