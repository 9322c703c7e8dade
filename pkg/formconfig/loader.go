package formconfig

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

//go:embed forms/*.yaml
var embeddedForms embed.FS

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Store holds the loaded form variants.
type Store struct {
	forms map[string]model.FormModel
}

// Default returns the embedded form variants. It panics if they fail to load.
func Default() *Store {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedForms, "forms")
		if err != nil {
			defaultErr = err
			return
		}
		defaultStore, defaultErr = LoadFS(sub)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("formconfig: embedded forms: %v", defaultErr))
	}
	return defaultStore
}

// LoadFile parses a single JSON or YAML document.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formconfig: read %s: %w", path, err)
	}
	store := &Store{forms: make(map[string]model.FormModel)}
	if err := store.add(data, filepath.Base(path)); err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFS walks fsys and parses every JSON/YAML document.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormModel)}
	if fsys == nil {
		return store, nil
	}
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isFormFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formconfig: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns the variant with id.
func (s *Store) Form(id string) (model.FormModel, bool) {
	if s == nil {
		return model.FormModel{}, false
	}
	form, ok := s.forms[strings.TrimSpace(id)]
	return form, ok
}

// IDs lists variant IDs in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Method   string            `json:"method" yaml:"method"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	Steps    []stepFile        `json:"steps" yaml:"steps"`
}

type stepFile struct {
	ID     string            `json:"id" yaml:"id"`
	Title  map[string]string `json:"title" yaml:"title"`
	Fields []fieldFile       `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name           string            `json:"name" yaml:"name"`
	Kind           string            `json:"kind" yaml:"kind"`
	Required       bool              `json:"required" yaml:"required"`
	Min            int               `json:"min" yaml:"min"`
	Max            int               `json:"max" yaml:"max"`
	Input          string            `json:"input" yaml:"input"`
	LabelKey       string            `json:"labelKey" yaml:"labelKey"`
	PlaceholderKey string            `json:"placeholderKey" yaml:"placeholderKey"`
	Label          map[string]string `json:"label" yaml:"label"`
	Placeholder    map[string]string `json:"placeholder" yaml:"placeholder"`
	Options        []optionFile      `json:"options" yaml:"options"`
}

type optionFile struct {
	Value string            `json:"value" yaml:"value"`
	Label map[string]string `json:"label" yaml:"label"`
}

func (s *Store) add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(doc.Forms))
	for id := range doc.Forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, rawID := range ids {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("formconfig: file %s defines an empty form id", source)
		}
		if _, exists := s.forms[id]; exists {
			return fmt.Errorf("formconfig: duplicate form %q (file %s)", id, source)
		}
		form, err := normaliseForm(doc.Forms[rawID], id, source)
		if err != nil {
			return err
		}
		s.forms[id] = form
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("formconfig: file %s is empty", source)
	}
	if strings.HasSuffix(strings.ToLower(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("formconfig: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("formconfig: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(raw formFile, id, source string) (model.FormModel, error) {
	if len(raw.Steps) == 0 {
		return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) has no steps", id, source)
	}
	form := model.FormModel{
		ID:       id,
		Endpoint: strings.TrimSpace(raw.Endpoint),
		Method:   strings.ToUpper(strings.TrimSpace(raw.Method)),
		Metadata: raw.Metadata,
	}
	seenFields := make(map[string]struct{})
	seenSteps := make(map[string]struct{})
	for i, rawStep := range raw.Steps {
		stepID := strings.TrimSpace(rawStep.ID)
		if stepID == "" {
			stepID = fmt.Sprintf("step-%d", i+1)
		}
		if _, dup := seenSteps[stepID]; dup {
			return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) repeats step %q", id, source, stepID)
		}
		seenSteps[stepID] = struct{}{}

		title, err := languageMap(rawStep.Title)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("formconfig: form %q step %q title: %w", id, stepID, err)
		}
		if len(rawStep.Fields) == 0 {
			return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) step %q has no fields", id, source, stepID)
		}
		step := model.Step{ID: stepID, Title: title}
		for _, rawField := range rawStep.Fields {
			field, err := normaliseField(rawField)
			if err != nil {
				return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) step %q: %w", id, source, stepID, err)
			}
			if _, dup := seenFields[field.Name]; dup {
				return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) defines duplicate field %q", id, source, field.Name)
			}
			seenFields[field.Name] = struct{}{}
			step.Fields = append(step.Fields, field)
		}
		form.Steps = append(form.Steps, step)
	}
	return form, nil
}

func normaliseField(raw fieldFile) (model.FieldSpec, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.FieldSpec{}, fmt.Errorf("field name is required")
	}
	kind, err := parseKind(raw.Kind)
	if err != nil {
		return model.FieldSpec{}, fmt.Errorf("field %q: %w", name, err)
	}
	if validation.InferKind(model.FieldSpec{Name: name, Kind: kind}) == model.FieldKindBoundedInteger {
		if raw.Min > raw.Max {
			return model.FieldSpec{}, fmt.Errorf("field %q: min %d exceeds max %d", name, raw.Min, raw.Max)
		}
		if raw.Max == 0 {
			return model.FieldSpec{}, fmt.Errorf("field %q: bounded integer needs max", name)
		}
	}
	label, err := languageMap(raw.Label)
	if err != nil {
		return model.FieldSpec{}, fmt.Errorf("field %q label: %w", name, err)
	}
	placeholder, err := languageMap(raw.Placeholder)
	if err != nil {
		return model.FieldSpec{}, fmt.Errorf("field %q placeholder: %w", name, err)
	}
	spec := model.FieldSpec{
		Name:           name,
		Required:       raw.Required,
		Kind:           kind,
		Min:            raw.Min,
		Max:            raw.Max,
		Input:          strings.TrimSpace(raw.Input),
		LabelKey:       strings.TrimSpace(raw.LabelKey),
		PlaceholderKey: strings.TrimSpace(raw.PlaceholderKey),
		Label:          label,
		Placeholder:    placeholder,
	}
	for _, rawOpt := range raw.Options {
		optLabel, err := languageMap(rawOpt.Label)
		if err != nil {
			return model.FieldSpec{}, fmt.Errorf("field %q option %q: %w", name, rawOpt.Value, err)
		}
		spec.Options = append(spec.Options, model.Option{Value: strings.TrimSpace(rawOpt.Value), Label: optLabel})
	}
	return spec, nil
}

func parseKind(raw string) (model.FieldKind, error) {
	switch strings.TrimSpace(raw) {
	case "":
		return "", nil
	case string(model.FieldKindGeneric):
		return model.FieldKindGeneric, nil
	case string(model.FieldKindEmail):
		return model.FieldKindEmail, nil
	case string(model.FieldKindPhone):
		return model.FieldKindPhone, nil
	case string(model.FieldKindBoundedInteger), "bounded_integer", "age":
		return model.FieldKindBoundedInteger, nil
	default:
		return "", fmt.Errorf("unknown kind %q", raw)
	}
}

func languageMap(raw map[string]string) (map[model.Language]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[model.Language]string, len(raw))
	for code, text := range raw {
		lang := model.Language(strings.ToLower(strings.TrimSpace(code)))
		if !lang.Valid() {
			return nil, fmt.Errorf("unsupported language %q", code)
		}
		out[lang] = strings.TrimSpace(text)
	}
	return out, nil
}

func isFormFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
