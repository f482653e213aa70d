package intake

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mealprep/mealbot/internal/recipe"
)

// Action is the workflow an event routes to.
type Action int

const (
	// ActionNone means the event matches neither workflow.
	ActionNone Action = iota
	// ActionShare is the create-recipe path.
	ActionShare
	// ActionVote is the increment-likes path.
	ActionVote
)

// String returns the action name used in outcomes and the audit log.
func (a Action) String() string {
	switch a {
	case ActionShare:
		return "share"
	case ActionVote:
		return "vote"
	default:
		return "none"
	}
}

// Event is one inbound issue event from the hosting platform, reduced
// to the fields the controller routes on.
//
// Payload holds the JSON object embedded in the issue body, or nil when
// the body had none or it failed to parse. A nil payload is not an
// error: the workflow proceeds with empty fields and rejects on its own
// validation (MalformedInput is soft).
type Event struct {
	Title       string
	Labels      []string
	Payload     json.RawMessage
	IssueNumber int
}

// payloadBlock matches a ```json fenced code block in an issue body.
var payloadBlock = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

type rawEvent struct {
	Issue struct {
		Title  string `json:"title"`
		Body   string `json:"body"`
		Number int    `json:"number"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"issue"`
}

// ParseEvent decodes a platform event document into an Event.
//
// The title is trimmed and lowercased and label names are lowercased,
// matching how routing compares them.
func ParseEvent(data []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	evt := &Event{
		Title:       strings.ToLower(strings.TrimSpace(raw.Issue.Title)),
		IssueNumber: raw.Issue.Number,
	}
	for _, l := range raw.Issue.Labels {
		evt.Labels = append(evt.Labels, strings.ToLower(l.Name))
	}

	if m := payloadBlock.FindStringSubmatch(raw.Issue.Body); m != nil {
		if json.Valid([]byte(m[1])) {
			evt.Payload = json.RawMessage(m[1])
		}
	}
	return evt, nil
}

// Route decides which workflow the event belongs to. The label wins over
// the title prefix, but either is enough.
func (e *Event) Route() Action {
	labels := make(map[string]bool, len(e.Labels))
	for _, l := range e.Labels {
		labels[l] = true
	}
	switch {
	case labels["recipe"] || strings.HasPrefix(e.Title, "share:"):
		return ActionShare
	case labels["vote"] || strings.HasPrefix(e.Title, "vote:"):
		return ActionVote
	default:
		return ActionNone
	}
}

// SharePayload is the JSON object a share issue carries.
type SharePayload struct {
	Name        string              `json:"name"`
	ID          string              `json:"id"`
	Author      string              `json:"author"`
	Likes       int                 `json:"likes"`
	Category    string              `json:"category"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Notes       string              `json:"notes"`
	Servings    int                 `json:"servings"`
}

// VotePayload is the JSON object a vote issue carries. The target recipe
// comes from id or name; build_id identifies the voting installation.
type VotePayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BuildID string `json:"build_id"`
}

// decodePayload fills dst from the event payload. Decode failures are
// tolerated: whatever fields decoded stay, the rest remain zero, and the
// workflow's own validation produces the user-facing rejection.
func (e *Event) decodePayload(dst any) {
	if e.Payload == nil {
		return
	}
	_ = json.Unmarshal(e.Payload, dst)
}
