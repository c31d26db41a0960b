package agent

import (
	"os"
	"path/filepath"
	"strings"
)

// GuidelineFiles lists the project files searched for review guidelines,
// relative to the working directory. The first file found wins.
var GuidelineFiles = []string{
	".gra/guidelines.md",
	"REVIEW_GUIDELINES.md",
	"docs/review-guidelines.md",
}

// LoadGuidelines reads project review guidelines from workDir and returns
// them wrapped in a prompt section. Returns "" when no guideline file
// exists. Unreadable or empty files are skipped rather than failing the
// review.
func LoadGuidelines(workDir string) string {
	for _, rel := range GuidelineFiles {
		content, err := os.ReadFile(filepath.Join(workDir, rel))
		if err != nil {
			continue
		}

		text := strings.TrimSpace(string(content))
		if text == "" {
			continue
		}

		var builder strings.Builder
		builder.WriteString("\n## Project review guidelines\n\n")
		builder.WriteString(text)
		builder.WriteString("\n")
		return builder.String()
	}

	return ""
}
