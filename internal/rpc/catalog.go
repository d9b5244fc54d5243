package rpc

import (
	"fmt"
	"sort"
	"strings"
)

type FieldKind string

const (
	KindID       FieldKind = "id"
	KindTeamID   FieldKind = "team_id"
	KindText     FieldKind = "text"
	KindBool     FieldKind = "bool"
	KindInt      FieldKind = "int"
	KindDuration FieldKind = "duration"
)

// Field describes one input of an action form.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Placeholder string
	Paragraph   bool
}

func (f Field) parse(raw string) (any, error) {
	switch f.Kind {
	case KindID:
		return ParseID(raw)
	case KindTeamID:
		return ParseTeamID(raw)
	case KindText:
		return parseText(raw)
	case KindBool:
		return ParseBool(raw)
	case KindInt:
		return ParseInt(raw)
	case KindDuration:
		return ParseHours(raw)
	default:
		return nil, fmt.Errorf("unsupported field kind %q", f.Kind)
	}
}

// Values holds the parsed fields of one submission.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

// Spec is the schema of one action kind.
type Spec struct {
	Method Method
	Title  string
	Fields []Field
	Build  func(Values) Action
}

// Parse validates raw field values in schema order and stops at the first
// failure.
func (s Spec) Parse(raw map[string]string) (Values, error) {
	values := make(Values, len(s.Fields))
	for _, field := range s.Fields {
		input, ok := raw[field.Name]
		if !ok || strings.TrimSpace(input) == "" {
			return nil, &FieldError{Field: field.Name, Err: errRequired}
		}
		value, err := field.parse(input)
		if err != nil {
			return nil, &FieldError{Field: field.Name, Err: err}
		}
		values[field.Name] = value
	}
	return values, nil
}

type Catalog struct {
	specs map[Method]Spec
	order []Method
}

func NewCatalog(specs ...Spec) *Catalog {
	c := &Catalog{
		specs: make(map[Method]Spec, len(specs)),
		order: make([]Method, 0, len(specs)),
	}
	for _, spec := range specs {
		if _, exists := c.specs[spec.Method]; !exists {
			c.order = append(c.order, spec.Method)
		}
		c.specs[spec.Method] = spec
	}
	return c
}

// Lookup matches name exactly. Callers trim user input first.
func (c *Catalog) Lookup(name string) (Spec, error) {
	spec, ok := c.specs[Method(name)]
	if !ok {
		return Spec{}, fmt.Errorf("%q: %w", name, ErrUnknownAction)
	}
	return spec, nil
}

func (c *Catalog) Methods() []Method {
	return append([]Method(nil), c.order...)
}

// Suggest returns the names containing partial, ignoring case. An empty
// partial matches everything.
func (c *Catalog) Suggest(partial string) []Method {
	needle := strings.ToLower(strings.TrimSpace(partial))
	result := make([]Method, 0, len(c.order))
	for _, method := range c.order {
		if needle == "" || strings.Contains(strings.ToLower(string(method)), needle) {
			result = append(result, method)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.HasPrefix(strings.ToLower(string(result[i])), needle) &&
			!strings.HasPrefix(strings.ToLower(string(result[j])), needle)
	})
	return result
}

// Build turns raw text inputs into a validated Action.
func (c *Catalog) Build(name string, raw map[string]string) (Action, error) {
	spec, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	values, err := spec.Parse(raw)
	if err != nil {
		return nil, err
	}
	return spec.Build(values), nil
}

var (
	fieldBotID  = Field{Name: "bot_id", Label: "Bot ID", Kind: KindID}
	fieldReason = Field{Name: "reason", Label: "Reason", Kind: KindText, Paragraph: true}
	fieldProof  = Field{Name: "reason", Label: "Reason", Kind: KindText, Paragraph: true, Placeholder: "You must give proof"}
)

func botReasonSpec(method Method, title string, reason Field, build func(botID, reason string) Action) Spec {
	return Spec{
		Method: method,
		Title:  title,
		Fields: []Field{fieldBotID, reason},
		Build: func(v Values) Action {
			return build(v.String("bot_id"), v.String("reason"))
		},
	}
}

// Default returns the closed set of staff actions.
func Default() *Catalog {
	return NewCatalog(
		Spec{
			Method: MethodBotClaim,
			Title:  "Claim Bot",
			Fields: []Field{
				fieldBotID,
				{Name: "force", Label: "Force Claim [Y/N]", Kind: KindBool, Placeholder: "Y/N"},
			},
			Build: func(v Values) Action {
				return BotClaim{BotID: v.String("bot_id"), Force: v.Bool("force")}
			},
		},
		botReasonSpec(MethodBotUnclaim, "Unclaim Bot", fieldReason, func(botID, reason string) Action {
			return BotUnclaim{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotApprove, "Approve Bot", fieldReason, func(botID, reason string) Action {
			return BotApprove{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotDeny, "Deny Bot", fieldReason, func(botID, reason string) Action {
			return BotDeny{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotVoteReset, "Vote Reset Bot", fieldReason, func(botID, reason string) Action {
			return BotVoteReset{BotID: botID, Reason: reason}
		}),
		Spec{
			Method: MethodBotVoteResetAll,
			Title:  "Vote Reset All Bots",
			Fields: []Field{fieldReason},
			Build: func(v Values) Action {
				return BotVoteResetAll{Reason: v.String("reason")}
			},
		},
		botReasonSpec(MethodBotUnverify, "Unverify Bot", fieldProof, func(botID, reason string) Action {
			return BotUnverify{BotID: botID, Reason: reason}
		}),
		Spec{
			Method: MethodBotPremiumAdd,
			Title:  "Add Bot To Premium",
			Fields: []Field{
				fieldBotID,
				fieldProof,
				{Name: "duration", Label: "Time Period", Kind: KindDuration, Placeholder: "Format: INTEGER UNIT, e.g. 1 day, 2 weeks, 3 months, 4 years"},
			},
			Build: func(v Values) Action {
				return BotPremiumAdd{BotID: v.String("bot_id"), Reason: v.String("reason"), Hours: v.Int("duration")}
			},
		},
		botReasonSpec(MethodBotPremiumRemove, "Remove Bot From Premium", fieldProof, func(botID, reason string) Action {
			return BotPremiumRemove{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotVoteBanAdd, "Vote Ban Bot", fieldReason, func(botID, reason string) Action {
			return BotVoteBanAdd{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotVoteBanRemove, "Vote Ban Remove Bot", fieldReason, func(botID, reason string) Action {
			return BotVoteBanRemove{BotID: botID, Reason: reason}
		}),
		Spec{
			Method: MethodBotForceRemove,
			Title:  "Force Remove Bot",
			Fields: []Field{
				fieldBotID,
				fieldReason,
				{Name: "kick", Label: "Kick?", Kind: KindBool, Placeholder: "T/F"},
			},
			Build: func(v Values) Action {
				return BotForceRemove{BotID: v.String("bot_id"), Reason: v.String("reason"), Kick: v.Bool("kick")}
			},
		},
		botReasonSpec(MethodBotCertifyAdd, "Certify Bot (not recommended)", fieldReason, func(botID, reason string) Action {
			return BotCertifyAdd{BotID: botID, Reason: reason}
		}),
		botReasonSpec(MethodBotCertifyRemove, "Uncertify Bot", fieldReason, func(botID, reason string) Action {
			return BotCertifyRemove{BotID: botID, Reason: reason}
		}),
		Spec{
			Method: MethodBotVoteCountSet,
			Title:  "Set Bot Vote Count",
			Fields: []Field{
				fieldBotID,
				fieldReason,
				{Name: "count", Label: "Count", Kind: KindInt},
			},
			Build: func(v Values) Action {
				return BotVoteCountSet{BotID: v.String("bot_id"), Reason: v.String("reason"), Count: v.Int("count")}
			},
		},
		Spec{
			Method: MethodBotTransferOwnershipUser,
			Title:  "Transfer Bot Ownership",
			Fields: []Field{
				fieldBotID,
				fieldReason,
				{Name: "new_owner", Label: "New Owner ID", Kind: KindID},
			},
			Build: func(v Values) Action {
				return BotTransferOwnershipUser{BotID: v.String("bot_id"), Reason: v.String("reason"), NewOwner: v.String("new_owner")}
			},
		},
		Spec{
			Method: MethodBotTransferOwnershipTeam,
			Title:  "Transfer Bot Ownership to Team",
			Fields: []Field{
				fieldBotID,
				fieldReason,
				{Name: "new_team", Label: "New Team ID", Kind: KindTeamID},
			},
			Build: func(v Values) Action {
				return BotTransferOwnershipTeam{BotID: v.String("bot_id"), Reason: v.String("reason"), NewTeam: v.String("new_team")}
			},
		},
		Spec{
			Method: MethodTeamNameEdit,
			Title:  "Team Name Edit",
			Fields: []Field{
				{Name: "team_id", Label: "Team ID", Kind: KindTeamID},
				{Name: "new_name", Label: "New Team Name", Kind: KindText},
				fieldReason,
			},
			Build: func(v Values) Action {
				return TeamNameEdit{TeamID: v.String("team_id"), NewName: v.String("new_name"), Reason: v.String("reason")}
			},
		},
	)
}
