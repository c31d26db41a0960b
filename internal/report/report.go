// Package report fetches the draft comments a review run produced and
// renders the terminal summary shown after the run settles.
package report

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/richhaase/gerrit-review-agent/internal/domain"
	"github.com/richhaase/gerrit-review-agent/internal/terminal"
	"github.com/richhaase/gerrit-review-agent/internal/tools"
)

// Client is the slice of the Gerrit client the report needs.
type Client interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// DraftComment is one unpublished draft comment on a change. Path is filled
// from the enclosing map key of the drafts response, not the comment object.
type DraftComment struct {
	ID         string `json:"id"`
	Path       string `json:"-"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Unresolved bool   `json:"unresolved"`
	InReplyTo  string `json:"in_reply_to"`
}

// FetchDrafts retrieves the drafts the authenticated user holds on the
// change's current revision, flattened into a single slice ordered with
// patchset-level drafts first, then by file path and line.
func FetchDrafts(ctx context.Context, client Client, changeNumber int) ([]DraftComment, error) {
	body, err := client.Get(ctx, fmt.Sprintf("changes/%d/revisions/current/drafts", changeNumber))
	if err != nil {
		return nil, err
	}

	var byPath map[string][]DraftComment
	if err := json.Unmarshal(body, &byPath); err != nil {
		return nil, fmt.Errorf("failed to parse drafts response: %w", err)
	}

	var drafts []DraftComment
	for path, comments := range byPath {
		for _, c := range comments {
			c.Path = path
			drafts = append(drafts, c)
		}
	}

	slices.SortFunc(drafts, compareDrafts)
	return drafts, nil
}

// compareDrafts orders patchset-level drafts before file drafts, then by
// path and line.
func compareDrafts(a, b DraftComment) int {
	if a.Path != b.Path {
		if a.Path == tools.PatchsetLevelPath {
			return -1
		}
		if b.Path == tools.PatchsetLevelPath {
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	}
	return cmp.Compare(a.Line, b.Line)
}

// Render renders the terminal report for a settled run. Drafts must already
// be in FetchDrafts order.
func Render(changeNumber int, drafts []DraftComment, res *domain.RunResult) string {
	width := terminal.ReportWidth()

	var lines []string

	if res != nil && res.Stopped() {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%s⚠ Run stopped early; the drafts below may be incomplete%s",
			terminal.Color(terminal.Yellow), terminal.Color(terminal.Reset)))
	}

	// No drafts case
	if len(drafts) == 0 {
		lines = append(lines, fmt.Sprintf("%s✓%s %s%sNo draft comments%s %s(change %d)%s",
			terminal.Color(terminal.Green), terminal.Color(terminal.Reset),
			terminal.Color(terminal.Green), terminal.Color(terminal.Bold), terminal.Color(terminal.Reset),
			terminal.Color(terminal.Dim), changeNumber, terminal.Color(terminal.Reset)))
		return strings.Join(lines, "\n")
	}

	// Header
	lines = append(lines, "")
	draftWord := "draft comment"
	if len(drafts) != 1 {
		draftWord = "draft comments"
	}
	lines = append(lines, fmt.Sprintf("%s%s📋 %d %s on change %d%s",
		terminal.Color(terminal.Cyan), terminal.Color(terminal.Bold), len(drafts), draftWord, changeNumber, terminal.Color(terminal.Reset)))
	lines = append(lines, terminal.Ruler(width, "━"))

	// One section per file, patchset-level first
	for start := 0; start < len(drafts); {
		end := start
		for end < len(drafts) && drafts[end].Path == drafts[start].Path {
			end++
		}

		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%s%s%s",
			terminal.Color(terminal.Bold), displayPath(drafts[start].Path), terminal.Color(terminal.Reset)))
		lines = append(lines, terminal.Ruler(width, "─"))

		for _, d := range drafts[start:end] {
			text := draftLabel(d) + d.Message
			if strings.TrimSpace(text) == "" {
				continue
			}
			bullet := fmt.Sprintf("   %s•%s ", terminal.Color(terminal.Yellow), terminal.Color(terminal.Reset))
			lines = append(lines, terminal.WrapText(text, width-5, bullet))
		}

		start = end
	}

	lines = append(lines, "")
	lines = append(lines, terminal.Ruler(width, "━"))

	if res != nil && res.ResultText != "" {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%sAgent summary:%s", terminal.Color(terminal.Dim), terminal.Color(terminal.Reset)))
		lines = append(lines, terminal.WrapText(res.ResultText, width-3, "   "))
	}

	if res != nil && (res.Duration > 0 || res.AgentDuration > 0 || res.NumTurns > 0) {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%sTiming:%s", terminal.Color(terminal.Dim), terminal.Color(terminal.Reset)))

		if res.Duration > 0 {
			lines = append(lines, fmt.Sprintf("  %srun: %s%s",
				terminal.Color(terminal.Dim), terminal.FormatDuration(res.Duration), terminal.Color(terminal.Reset)))
		}

		if res.AgentDuration > 0 {
			lines = append(lines, fmt.Sprintf("  %sagent: %s%s",
				terminal.Color(terminal.Dim), terminal.FormatDuration(res.AgentDuration), terminal.Color(terminal.Reset)))
		}

		if res.NumTurns > 0 {
			turnWord := "turn"
			if res.NumTurns != 1 {
				turnWord = "turns"
			}
			lines = append(lines, fmt.Sprintf("  %s%d %s%s",
				terminal.Color(terminal.Dim), res.NumTurns, turnWord, terminal.Color(terminal.Reset)))
		}
	}

	return strings.Join(lines, "\n")
}

// RenderFetchFailure renders the notice shown when drafts cannot be fetched
// after a run. The drafts still exist on the server; only the summary is
// lost, so this never affects the run's outcome.
func RenderFetchFailure(err error) string {
	return fmt.Sprintf("%s⚠ could not fetch draft comments: %v%s",
		terminal.Color(terminal.Yellow), err, terminal.Color(terminal.Reset))
}

// displayPath renders the patchset-level sentinel as a friendly label.
func displayPath(path string) string {
	if path == tools.PatchsetLevelPath {
		return "Patchset"
	}
	return path
}

// draftLabel prefixes a draft's message with its anchor within the file.
func draftLabel(d DraftComment) string {
	switch {
	case d.InReplyTo != "" && d.Line > 0:
		return fmt.Sprintf("line %d (reply): ", d.Line)
	case d.InReplyTo != "":
		return "(reply): "
	case d.Line > 0:
		return fmt.Sprintf("line %d: ", d.Line)
	default:
		return ""
	}
}
