package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// MailRule is one step of the notification schedule: once the flag count
// reaches MinCount, mail goes out every Step flags.
type MailRule struct {
	MinCount int `json:"min_count"`
	Step     int `json:"step"`
}

type Recipient struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type Status struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

// Model is a fully resolved flag policy for one content type. A zero limit
// means unlimited.
type Model struct {
	LimitForObject         int
	LimitSameObjectForUser int
	AllowComments          bool
	SendMails              bool
	SendMailsTo            []Recipient
	SendMailsFrom          string
	SendMailsRules         []MailRule
	Statuses               []Status
	PublicURLPattern       string
	AdminURLPattern        string
}

// StatusLabel maps a status code to its display label.
func (m Model) StatusLabel(code int) (string, bool) {
	for _, s := range m.Statuses {
		if s.Code == code {
			return s.Label, true
		}
	}
	return "", false
}

// DefaultStatus is the code content starts in: the first configured status.
func (m Model) DefaultStatus() int {
	if len(m.Statuses) == 0 {
		return 1
	}
	return m.Statuses[0].Code
}

// Override carries optional per-type values; nil fields fall back to the
// global defaults. Field by field, not struct by struct.
type Override struct {
	LimitForObject         *int        `json:"limit_for_object,omitempty"`
	LimitSameObjectForUser *int        `json:"limit_same_object_for_user,omitempty"`
	AllowComments          *bool       `json:"allow_comments,omitempty"`
	SendMails              *bool       `json:"send_mails,omitempty"`
	SendMailsTo            []Recipient `json:"send_mails_to,omitempty"`
	SendMailsFrom          *string     `json:"send_mails_from,omitempty"`
	SendMailsRules         []MailRule  `json:"send_mails_rules,omitempty"`
	Statuses               []Status    `json:"statuses,omitempty"`
	PublicURLPattern       *string     `json:"public_url_pattern,omitempty"`
	AdminURLPattern        *string     `json:"admin_url_pattern,omitempty"`
}

// Settings resolves flag policy per content type: global defaults layered
// under per-type overrides, plus the optional flaggable-model allow-list.
type Settings struct {
	mu        sync.RWMutex
	allowed   []string // nil means every model is flaggable
	def       Model
	overrides map[string]Override
}

func New(def Model, allowed []string) *Settings {
	return &Settings{
		allowed:   allowed,
		def:       def,
		overrides: make(map[string]Override),
	}
}

func DefaultStatuses() []Status {
	return []Status{
		{1, "flagged"},
		{2, "flag rejected by moderator"},
		{3, "creator notified"},
		{4, "content removed by creator"},
		{5, "content removed by moderator"},
	}
}

// DefaultModel is the policy applied when nothing is configured: no limits,
// no comments, no mail.
func DefaultModel() Model {
	return Model{Statuses: DefaultStatuses()}
}

func (s *Settings) SetOverride(typeTag string, o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[typeTag] = o
}

// ModelAllowed reports whether a content type may be flagged. An empty
// allow-list admits everything.
func (s *Settings) ModelAllowed(typeTag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.allowed) == 0 {
		return true
	}
	for _, m := range s.allowed {
		if m == typeTag {
			return true
		}
	}
	return false
}

// ConfiguredModels lists every type tag the settings know about, from the
// allow-list and from per-type overrides.
func (s *Settings) ConfiguredModels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(s.allowed)+len(s.overrides))
	result := make([]string, 0, len(s.allowed)+len(s.overrides))
	for _, m := range s.allowed {
		if !seen[m] {
			seen[m] = true
			result = append(result, m)
		}
	}
	for m := range s.overrides {
		if !seen[m] {
			seen[m] = true
			result = append(result, m)
		}
	}
	return result
}

// For resolves the effective policy for one content type.
func (s *Settings) For(typeTag string) Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.def
	o, ok := s.overrides[typeTag]
	if !ok {
		return m
	}
	if o.LimitForObject != nil {
		m.LimitForObject = *o.LimitForObject
	}
	if o.LimitSameObjectForUser != nil {
		m.LimitSameObjectForUser = *o.LimitSameObjectForUser
	}
	if o.AllowComments != nil {
		m.AllowComments = *o.AllowComments
	}
	if o.SendMails != nil {
		m.SendMails = *o.SendMails
	}
	if o.SendMailsTo != nil {
		m.SendMailsTo = o.SendMailsTo
	}
	if o.SendMailsFrom != nil {
		m.SendMailsFrom = *o.SendMailsFrom
	}
	if o.SendMailsRules != nil {
		m.SendMailsRules = o.SendMailsRules
	}
	if o.Statuses != nil {
		m.Statuses = o.Statuses
	}
	if o.PublicURLPattern != nil {
		m.PublicURLPattern = *o.PublicURLPattern
	}
	if o.AdminURLPattern != nil {
		m.AdminURLPattern = *o.AdminURLPattern
	}
	return m
}

type settingsFile struct {
	Flaggable []string            `json:"flaggable,omitempty"`
	Models    map[string]Override `json:"models,omitempty"`
}

// LoadFile merges a JSON settings file into the resolver. The file may carry
// an allow-list and per-type overrides.
func (s *Settings) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read flag settings: %w", err)
	}

	var file settingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse flag settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(file.Flaggable) > 0 {
		s.allowed = file.Flaggable
	}
	for tag, o := range file.Models {
		s.overrides[tag] = o
	}
	return nil
}

// ParseMailRules parses a "min:step,min:step" spec, e.g. "5:1,10:5".
func ParseMailRules(spec string) ([]MailRule, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	rules := make([]MailRule, 0, len(parts))
	for _, part := range parts {
		minStr, stepStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid mail rule %q: want min:step", part)
		}
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return nil, fmt.Errorf("invalid mail rule %q: %w", part, err)
		}
		step, err := strconv.Atoi(stepStr)
		if err != nil {
			return nil, fmt.Errorf("invalid mail rule %q: %w", part, err)
		}
		rules = append(rules, MailRule{MinCount: min, Step: step})
	}
	return rules, nil
}
