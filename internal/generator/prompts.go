package generator

import (
	"fmt"
	"strings"
)

// TopicMaxTokens is the completion budget for a topic suggestion.
const TopicMaxTokens = 100

// Link is an internal link target offered to the writer.
type Link struct {
	Title string
	URL   string
}

// TopicPrompt asks for a single blog topic given the site's categories and,
// optionally, current headlines.
func TopicPrompt(categories, headlines []string) string {
	var b strings.Builder
	b.WriteString("Generate a single, engaging blog post topic that would be relevant and SEO-friendly.\n")
	b.WriteString("Consider current trends and user interests. Return only the topic, no additional text.\n")
	b.WriteString("Context: Generate a blog topic based on these categories: ")
	b.WriteString(strings.Join(categories, ", "))
	if len(headlines) > 0 {
		b.WriteString("\nCurrent headlines for inspiration:\n")
		for _, h := range headlines {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ContentPrompt asks for a complete post about topic as a single JSON
// object with a fixed field set.
func ContentPrompt(topic string, s Settings, links []Link) string {
	external := "No external links needed"
	if s.ExternalLinks > 0 {
		external = fmt.Sprintf("Include %d external links to authoritative sources", s.ExternalLinks)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a comprehensive, SEO-optimized blog post about: %s\n\n", topic)
	b.WriteString("Requirements:\n")
	b.WriteString("1. Create an engaging title (H1)\n")
	b.WriteString("2. Write a compelling introduction\n")
	b.WriteString("3. Use proper heading structure (H2, H3)\n")
	b.WriteString("4. Include 5-7 relevant tags\n")
	b.WriteString("5. Suggest 2-3 categories\n")
	b.WriteString("6. Include a meta description (150-160 characters)\n")
	fmt.Fprintf(&b, "7. %s\n", external)
	b.WriteString("8. Make it conversational yet professional\n")
	b.WriteString("9. Ensure proper keyword density\n")
	b.WriteString("10. End with a strong conclusion\n")

	if s.InternalLinks > 0 && len(links) > 0 {
		fmt.Fprintf(&b, "\nInclude up to %d internal links to these posts where relevant:\n", s.InternalLinks)
		for _, l := range links {
			fmt.Fprintf(&b, "- %s (%s)\n", l.Title, l.URL)
		}
	}

	b.WriteString(`
Respond with a single JSON object and nothing else, using exactly this structure:
{
    "title": "Post title",
    "content": "Full HTML content with proper formatting",
    "excerpt": "Brief excerpt",
    "meta_description": "SEO meta description",
    "tags": ["tag1", "tag2"],
    "categories": ["category1", "category2"],
    "focus_keyword": "main keyword"
}`)
	return b.String()
}

// cleanTopic trims a topic to its first line and strips wrapping quotes
// and a leading "Topic:" label.
func cleanTopic(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= 6 && strings.EqualFold(s[:6], "topic:") {
		s = strings.TrimSpace(s[6:])
	}
	s = strings.Trim(s, "\"'`“”‘’*")
	return strings.TrimSpace(s)
}
