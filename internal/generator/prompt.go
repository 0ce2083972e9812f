package generator

import (
	"fmt"
	"strings"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

const systemPrompt = "You are a social media content expert. " +
	"You follow the given guidelines precisely and write optimized, ready-to-publish posts."

// BuildPlatformPrompt renders the generation instruction for one platform:
// source material, the platform's profile verbatim, and the output contract
// (language, length cap, hashtag budget, content-only reply).
func BuildPlatformPrompt(doc models.SourceDocument, profile models.PlatformProfile, language string) string {
	langInstruction := "Write in Korean."
	if language == "en" {
		langInstruction = "Write in English."
	}

	hashtagInstruction := "Do not use hashtags"
	if profile.HashtagBudget > 0 {
		hashtagInstruction = fmt.Sprintf("Include at most %d hashtags", profile.HashtagBudget)
	}

	titleLine := ""
	if doc.Title != "" {
		titleLine = fmt.Sprintf("Title: %s\n", doc.Title)
	}

	return strings.TrimSpace(fmt.Sprintf(`
Convert the source content below into a post optimized for %s.

## Source content
%s%s

## %s guidelines
- Tone: %s
%s

## Requirements
1. %s
2. Keep the core message of the source while adapting it to the platform
3. At most %d characters
4. %s
5. Natural copy that invites engagement

## Output format
Output only the post content, ready to publish, with no explanations or extra text.
If there are hashtags, append them at the end of the content.
`, profile.DisplayName, titleLine, doc.Text, profile.DisplayName, profile.Tone,
		profile.Guidelines, langInstruction, profile.MaxLength, hashtagInstruction))
}
