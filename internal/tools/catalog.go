package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/richhaase/gerrit-review-agent/internal/gerrit"
)

// PatchsetLevelPath is the sentinel file path Gerrit uses for comments that
// attach to the whole patchset rather than a file. It is passed through
// exactly as written and never gets a line number.
const PatchsetLevelPath = "/PATCHSET_LEVEL"

// draftInput is the PUT body for the drafts collection. Line is a pointer so
// file-level and patchset-level comments omit the field entirely.
type draftInput struct {
	Path       string `json:"path"`
	Message    string `json:"message"`
	Line       *int   `json:"line,omitempty"`
	InReplyTo  string `json:"in_reply_to,omitempty"`
	Unresolved bool   `json:"unresolved"`
}

// NewGerritRegistry builds the fixed Gerrit tool catalog backed by the given
// REST client.
func NewGerritRegistry(client *gerrit.Client) *Registry {
	changeNumberProp := Property{
		Type:        "number",
		Description: "The Gerrit change number",
	}

	return NewRegistry([]Definition{
		{
			Name:        "gerrit_get_change",
			Description: "Get change details including current revision, commit message, and owner",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"changeNumber": changeNumberProp},
				Required:   []string{"changeNumber"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				body, err := client.Get(ctx, "changes/"+id+"/detail/?o=CURRENT_REVISION&o=CURRENT_COMMIT&o=DETAILED_ACCOUNTS")
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
		{
			Name:        "gerrit_get_changed_files",
			Description: "List the files modified in the current revision of a change",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"changeNumber": changeNumberProp},
				Required:   []string{"changeNumber"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				body, err := client.Get(ctx, "changes/"+id+"/revisions/current/files")
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
		{
			Name:        "gerrit_get_file_content",
			Description: "Get the full content of a file at the current revision of a change",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"changeNumber": changeNumberProp,
					"filePath":     {Type: "string", Description: "Path of the file within the repository"},
				},
				Required: []string{"changeNumber", "filePath"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				filePath, err := stringArg(args, "filePath")
				if err != nil {
					return "", err
				}
				raw, err := client.GetRaw(ctx, "changes/"+id+"/revisions/current/files/"+url.PathEscape(filePath)+"/content")
				if err != nil {
					return "", err
				}
				decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
				if err != nil {
					return "", fmt.Errorf("failed to decode file content for %s: %w", filePath, err)
				}
				return string(decoded), nil
			},
		},
		{
			Name:        "gerrit_get_comments",
			Description: "Get all published review comments on a change, grouped by file",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"changeNumber": changeNumberProp},
				Required:   []string{"changeNumber"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				body, err := client.Get(ctx, "changes/"+id+"/comments/")
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
		{
			Name:        "gerrit_get_draft_comments",
			Description: "Get your unpublished draft comments on a change, grouped by file",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"changeNumber": changeNumberProp},
				Required:   []string{"changeNumber"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				body, err := client.Get(ctx, "changes/"+id+"/drafts/")
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
		{
			Name: "gerrit_post_draft_comment",
			Description: "Create a draft review comment on a file. Use line for a specific line, " +
				"omit it for a file-level comment, or pass filePath \"/PATCHSET_LEVEL\" for a comment on the whole patchset",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"changeNumber": changeNumberProp,
					"filePath":     {Type: "string", Description: "File path, or /PATCHSET_LEVEL for a patchset-level comment"},
					"message":      {Type: "string", Description: "The comment text"},
					"line":         {Type: "number", Description: "Line number the comment refers to (omit for file-level comments)"},
					"unresolved":   {Type: "boolean", Description: "Whether the comment opens an unresolved thread (default true)"},
				},
				Required: []string{"changeNumber", "filePath", "message"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				filePath, err := stringArg(args, "filePath")
				if err != nil {
					return "", err
				}
				message, err := stringArg(args, "message")
				if err != nil {
					return "", err
				}

				draft := draftInput{
					Path:       filePath,
					Message:    message,
					Unresolved: true,
				}
				if v, present := args["unresolved"]; present {
					b, ok := v.(bool)
					if !ok {
						return "", fmt.Errorf("argument %q must be a boolean", "unresolved")
					}
					draft.Unresolved = b
				}
				line, present, err := optionalLineArg(args)
				if err != nil {
					return "", err
				}
				if present {
					draft.Line = &line
				}

				body, err := client.Put(ctx, "changes/"+id+"/drafts/", draft)
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
		{
			Name: "gerrit_reply_to_comment",
			Description: "Reply to an existing review comment as a draft. " +
				"Replies always mark the thread resolved",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"changeNumber": changeNumberProp,
					"filePath":     {Type: "string", Description: "File path of the comment being answered"},
					"message":      {Type: "string", Description: "The reply text"},
					"inReplyTo":    {Type: "string", Description: "ID of the comment being answered"},
				},
				Required: []string{"changeNumber", "filePath", "message", "inReplyTo"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := changeID(args)
				if err != nil {
					return "", err
				}
				filePath, err := stringArg(args, "filePath")
				if err != nil {
					return "", err
				}
				message, err := stringArg(args, "message")
				if err != nil {
					return "", err
				}
				inReplyTo, err := stringArg(args, "inReplyTo")
				if err != nil {
					return "", err
				}

				// Reply drafts are resolved by construction; this is not
				// caller-controlled.
				draft := draftInput{
					Path:       filePath,
					Message:    message,
					InReplyTo:  inReplyTo,
					Unresolved: false,
				}

				body, err := client.Put(ctx, "changes/"+id+"/drafts/", draft)
				if err != nil {
					return "", err
				}
				return string(body), nil
			},
		},
	})
}

// changeID extracts the changeNumber argument, accepting a JSON number or a
// numeric string, and returns it as a path segment.
func changeID(args map[string]any) (string, error) {
	v, present := args["changeNumber"]
	if !present {
		return "", fmt.Errorf("missing required argument %q", "changeNumber")
	}

	switch n := v.(type) {
	case float64:
		if n <= 0 || n != math.Trunc(n) {
			return "", fmt.Errorf("argument %q must be a positive integer, got %v", "changeNumber", n)
		}
		return strconv.FormatInt(int64(n), 10), nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return "", fmt.Errorf("argument %q must not be empty", "changeNumber")
		}
		if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
			return "", fmt.Errorf("argument %q must be a change number, got %q", "changeNumber", n)
		}
		return trimmed, nil
	default:
		return "", fmt.Errorf("argument %q must be a number or numeric string, got %T", "changeNumber", v)
	}
}

// stringArg extracts a required non-empty string argument.
func stringArg(args map[string]any, name string) (string, error) {
	v, present := args[name]
	if !present {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	if s == "" {
		return "", fmt.Errorf("argument %q must not be empty", name)
	}
	return s, nil
}

// optionalLineArg extracts the optional line argument as a positive integer.
func optionalLineArg(args map[string]any) (int, bool, error) {
	v, present := args["line"]
	if !present || v == nil {
		return 0, false, nil
	}
	n, ok := v.(float64)
	if !ok || n <= 0 || n != math.Trunc(n) {
		return 0, false, fmt.Errorf("argument %q must be a positive integer line number", "line")
	}
	return int(n), true, nil
}
