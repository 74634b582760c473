// Package seed loads the sample site into an empty gateway.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

//go:embed data/sample.yaml
var sampleData []byte

// Placeholder prefixes resolved against ids created earlier in the run
const (
	refClass    = "@class:"
	refDocument = "@doc:"
	refTemplate = "@template:"
)

// Sample is the seed file layout
type Sample struct {
	Classes   []SampleClass    `yaml:"classes"`
	Templates []SampleTemplate `yaml:"templates"`
	Documents []SampleDocument `yaml:"documents"`
}

type SampleClass struct {
	Key    string          `yaml:"key"`
	Parent string          `yaml:"parent"`
	Name   string          `yaml:"name"`
	Fields []content.Field `yaml:"fields"`
}

type SampleTemplate struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

type SampleDocument struct {
	Key      string         `yaml:"key"`
	Class    string         `yaml:"class"`
	Parent   string         `yaml:"parent"`
	Template string         `yaml:"template"`
	Path     string         `yaml:"path"`
	Values   map[string]any `yaml:"values"`
}

// Summary counts what a run created
type Summary struct {
	Classes   int
	Templates int
	Documents int
}

// ParseSample decodes a seed file
func ParseSample(data []byte) (*Sample, error) {
	var sample Sample
	if err := yaml.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &sample, nil
}

// ContentSeeder creates seed entities through the services, so every write
// is validated like a user edit
type ContentSeeder struct {
	classes   contentSvc.ClassService
	templates contentSvc.TemplateService
	documents contentSvc.DocumentService
	logger    *slog.Logger
}

// NewContentSeeder creates a new content seeder
func NewContentSeeder(
	classes contentSvc.ClassService,
	templates contentSvc.TemplateService,
	documents contentSvc.DocumentService,
	logger *slog.Logger,
) *ContentSeeder {
	return &ContentSeeder{
		classes:   classes,
		templates: templates,
		documents: documents,
		logger:    logger,
	}
}

// SeedSample creates the embedded sample site
func (s *ContentSeeder) SeedSample(ctx context.Context) (*Summary, error) {
	sample, err := ParseSample(sampleData)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, sample)
}

// Seed creates classes, then templates, then documents, in file order.
// Entities may only refer to keys defined before them.
func (s *ContentSeeder) Seed(ctx context.Context, sample *Sample) (*Summary, error) {
	ids := map[string]string{}
	summary := &Summary{}

	for _, sc := range sample.Classes {
		fields := make([]content.Field, len(sc.Fields))
		for i, field := range sc.Fields {
			field.ClassID = resolve(ids, field.ClassID)
			fields[i] = field
		}
		class, err := s.classes.CreateClass(ctx, &contentSvc.ClassRequest{
			ParentID: ids[refClass+sc.Parent],
			Name:     sc.Name,
			Fields:   fields,
		})
		if err != nil {
			return summary, fmt.Errorf("seed class %s: %w", sc.Key, err)
		}
		ids[refClass+sc.Key] = class.ID
		summary.Classes++
		s.logger.Info("seeded class", "key", sc.Key, "id", class.ID)
	}

	for _, st := range sample.Templates {
		tmpl, err := s.templates.CreateTemplate(ctx, &contentSvc.TemplateRequest{Name: st.Name, Body: st.Body})
		if err != nil {
			return summary, fmt.Errorf("seed template %s: %w", st.Key, err)
		}
		ids[refTemplate+st.Key] = tmpl.ID
		summary.Templates++
	}

	for i, sd := range sample.Documents {
		classID, ok := ids[refClass+sd.Class]
		if !ok {
			return summary, fmt.Errorf("seed document %d: unknown class %q", i, sd.Class)
		}
		values := make(map[string]any, len(sd.Values))
		for k, v := range sd.Values {
			if str, isString := v.(string); isString {
				v = resolve(ids, str)
			}
			values[k] = v
		}

		doc, err := s.documents.CreateDocument(ctx, classID, &contentSvc.DocumentRequest{
			ParentID:   ids[refDocument+sd.Parent],
			TemplateID: ids[refTemplate+sd.Template],
			Path:       sd.Path,
			Values:     values,
		})
		if err != nil {
			return summary, fmt.Errorf("seed document %d (%s): %w", i, sd.Key, err)
		}
		if sd.Key != "" {
			ids[refDocument+sd.Key] = doc.ID
		}
		summary.Documents++
	}

	s.logger.Info("seed complete",
		"classes", summary.Classes,
		"templates", summary.Templates,
		"documents", summary.Documents,
	)
	return summary, nil
}

// resolve swaps a known placeholder for its id; other strings pass through
func resolve(ids map[string]string, value string) string {
	if !strings.HasPrefix(value, "@") {
		return value
	}
	if id, ok := ids[value]; ok {
		return id
	}
	return value
}
