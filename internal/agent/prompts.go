package agent

import (
	"strconv"
	"strings"
)

// ChangeNumberPlaceholder is substituted with the change number when a
// review prompt is built from a template. Custom prompts should include it.
const ChangeNumberPlaceholder = "{{CHANGE_NUMBER}}"

// DefaultReviewPrompt is the default review instruction. It walks the agent
// through the gerrit_* tools and asks for draft comments only, so nothing
// becomes visible to the change author until a human publishes it.
const DefaultReviewPrompt = `You are a code reviewer for Gerrit change {{CHANGE_NUMBER}}.

You have access to gerrit_* tools for reading the change and leaving draft comments.

## Your workflow:
1. Call gerrit_get_change to understand what the change is about.
2. Call gerrit_get_changed_files to list the files it touches.
3. For each changed file, call gerrit_get_file_content and review the code.
4. Call gerrit_get_comments and gerrit_get_draft_comments to see the existing
   discussion. Do not repeat feedback that has already been given; use
   gerrit_reply_to_comment if you have something to add to an existing thread.
5. For each issue you find, call gerrit_post_draft_comment with the file path,
   the line number, and a concise message. Post comments as you go rather than
   collecting them.
6. When you are done, post one patchset-level draft summarizing the review
   (filePath "/PATCHSET_LEVEL", no line).

## What to look for:
- Logic errors, wrong behavior, crashes
- Security issues (injection, auth bypass, exposure)
- Silent failures, swallowed errors
- Wrong type conversions
- Missing operations (data not passed, steps skipped)

## What to skip:
- Style/formatting
- Performance unless severe
- Suggestions (only report actual bugs)

All comments you post are drafts, visible only to the reviewing account until
published from the Gerrit UI.`

// BuildReviewPrompt renders the review prompt for a change. A non-empty
// template replaces the default; either way the change-number placeholder is
// substituted.
func BuildReviewPrompt(template string, changeNumber int) string {
	if template == "" {
		template = DefaultReviewPrompt
	}
	return strings.ReplaceAll(template, ChangeNumberPlaceholder, strconv.Itoa(changeNumber))
}
