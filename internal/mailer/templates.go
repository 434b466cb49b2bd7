package mailer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Templates holds the alert mail templates. Per-model templates are looked
// up first, then the generic pair shipped with the binary.
type Templates struct {
	set *template.Template
}

func DefaultTemplates() *Templates {
	return &Templates{
		set: template.Must(template.ParseFS(templateFS, "templates/*.txt")),
	}
}

// LoadDir merges *.txt templates from a directory, overriding same-named
// defaults and adding per-model pairs.
func (t *Templates) LoadDir(dir string) error {
	set, err := t.set.ParseGlob(dir + "/*.txt")
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	t.set = set
	return nil
}

// Render executes the first candidate template that exists.
func (t *Templates) Render(candidates []string, data any) (string, error) {
	for _, name := range candidates {
		tmpl := t.set.Lookup(name)
		if tmpl == nil {
			continue
		}
		var buf strings.Builder
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("no mail template found among %v", candidates)
}

// SubjectCandidates lists subject template names for a type tag, most
// specific first. Dots in the tag become underscores in the file name.
func SubjectCandidates(typeTag string) []string {
	return []string{
		"mail_alert_subject_" + sanitizeTag(typeTag) + ".txt",
		"mail_alert_subject.txt",
	}
}

func BodyCandidates(typeTag string) []string {
	return []string{
		"mail_alert_body_" + sanitizeTag(typeTag) + ".txt",
		"mail_alert_body.txt",
	}
}

func sanitizeTag(typeTag string) string {
	return strings.ReplaceAll(typeTag, ".", "_")
}
