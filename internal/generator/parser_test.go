package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

func TestParseOutputWithinLimit(t *testing.T) {
	raw := "Great read on Go concurrency patterns! #golang #testing"

	output := ParseOutput(raw, models.PlatformProfiles[models.PlatformTwitter])

	assert.Equal(t, raw, output.Content)
	assert.Equal(t, []string{"golang", "testing"}, output.Hashtags)
	assert.Equal(t, len([]rune(raw)), output.CharacterCount)
}

func TestParseOutputTruncationPreservesHashtags(t *testing.T) {
	profile := models.PlatformProfiles[models.PlatformTwitter]
	raw := strings.Repeat("All work and no play makes a dull post. ", 12) + "#golang #testing"
	require.Greater(t, len([]rune(raw)), profile.MaxLength)

	output := ParseOutput(raw, profile)

	assert.LessOrEqual(t, output.CharacterCount, profile.MaxLength)
	assert.True(t, strings.HasSuffix(output.Content, "#golang #testing"),
		"hashtags must survive truncation: %q", output.Content)
	assert.Contains(t, output.Content, "...")
	assert.Equal(t, []string{"golang", "testing"}, output.Hashtags)
}

func TestParseOutputTruncationWithoutHashtags(t *testing.T) {
	profile := models.PlatformProfiles[models.PlatformThreads]
	raw := strings.Repeat("thoughts ", 80)
	require.Greater(t, len([]rune(raw)), profile.MaxLength)

	output := ParseOutput(raw, profile)

	assert.LessOrEqual(t, output.CharacterCount, profile.MaxLength)
	assert.True(t, strings.HasSuffix(output.Content, "..."))
	assert.Empty(t, output.Hashtags)
}

func TestParseOutputOversizedHashtagBlock(t *testing.T) {
	profile := models.PlatformProfiles[models.PlatformTwitter]

	tags := make([]string, 30)
	for i := range tags {
		tags[i] = fmt.Sprintf("#longrunninghashtag%02d", i)
	}
	raw := "Short body. " + strings.Join(tags, " ")
	require.Greater(t, len([]rune(strings.Join(tags, " "))), profile.MaxLength,
		"the hashtag block alone must exceed the cap for this case")

	output := ParseOutput(raw, profile)

	assert.LessOrEqual(t, output.CharacterCount, profile.MaxLength)
	assert.Equal(t, len([]rune(output.Content)), output.CharacterCount)
	require.NotEmpty(t, output.Hashtags)
	assert.Less(t, len(output.Hashtags), len(tags))
	// Every surviving tag is still present in the content.
	for _, tag := range output.Hashtags {
		assert.Contains(t, output.Content, "#"+tag)
	}
}

func TestParseOutputSingleHashtagLongerThanCap(t *testing.T) {
	profile := models.PlatformProfiles[models.PlatformThreads]
	raw := strings.Repeat("body text ", 60) + "#" + strings.Repeat("가", 600)

	output := ParseOutput(raw, profile)

	assert.LessOrEqual(t, output.CharacterCount, profile.MaxLength)
	assert.True(t, strings.HasSuffix(output.Content, "..."))
	assert.Empty(t, output.Hashtags)
}

func TestParseOutputKoreanHashtags(t *testing.T) {
	output := ParseOutput("오늘의 개발 이야기 #개발 #코딩일기", models.PlatformProfiles[models.PlatformInstagram])

	assert.Equal(t, []string{"개발", "코딩일기"}, output.Hashtags)
}

func TestParseOutputCountsRunesNotBytes(t *testing.T) {
	raw := "한글로만 쓴 짧은 포스트"

	output := ParseOutput(raw, models.PlatformProfiles[models.PlatformFacebook])

	assert.Equal(t, len([]rune(raw)), output.CharacterCount)
	assert.NotEqual(t, len(raw), output.CharacterCount)
}

func TestParseOutputCharacterCountMatchesContent(t *testing.T) {
	profile := models.PlatformProfiles[models.PlatformTwitter]
	raw := strings.Repeat("가나다라마바사 아자차카타파하 ", 40) + "#한글 #테스트"

	output := ParseOutput(raw, profile)

	assert.Equal(t, len([]rune(output.Content)), output.CharacterCount)
	assert.LessOrEqual(t, output.CharacterCount, profile.MaxLength)
}
