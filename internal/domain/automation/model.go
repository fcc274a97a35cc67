package automation

import (
	"time"

	"eduvista/site/internal/domain/events"
)

// Action names what a rule does when its trigger fires.
type Action string

const (
	ActionSocialShare Action = "social.share"
	ActionEmailSend   Action = "email.send"
)

// Actions lists every supported action.
var Actions = []Action{ActionSocialShare, ActionEmailSend}

// Valid reports whether a is a supported action.
func (a Action) Valid() bool {
	return a == ActionSocialShare || a == ActionEmailSend
}

// Config keys understood by the actions.
const (
	ConfigPlatforms = "platforms"
	ConfigTemplate  = "template"
	ConfigTo        = "to"
	ConfigSubject   = "subject"
	ConfigBody      = "body"
)

const defaultShareTemplate = "{{title}} {{url}}"

// Rule binds a trigger to an action.
type Rule struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Trigger   events.Trigger    `json:"trigger"`
	Action    Action            `json:"action"`
	Config    map[string]string `json:"config"`
	Enabled   bool              `json:"enabled"`
	LastRunAt *time.Time        `json:"last_run_at,omitempty"`
	RunCount  int               `json:"run_count"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RuleInput creates a rule. Enabled defaults to true.
type RuleInput struct {
	Name    string            `json:"name" validate:"required,max=120"`
	Trigger events.Trigger    `json:"trigger" validate:"required"`
	Action  Action            `json:"action" validate:"required"`
	Config  map[string]string `json:"config,omitempty"`
	Enabled *bool             `json:"enabled,omitempty"`
}

// RulePatch partially updates a rule.
type RulePatch struct {
	Name    *string            `json:"name,omitempty"`
	Trigger *events.Trigger    `json:"trigger,omitempty"`
	Action  *Action            `json:"action,omitempty"`
	Config  *map[string]string `json:"config,omitempty"`
	Enabled *bool              `json:"enabled,omitempty"`
}
