// Package forms reads story submissions from YAML or JSON form files.
package forms

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"storysmith/internal/core"
	"storysmith/internal/logger"
)

// Raw is the on-disk layout of a form file. JSON files decode through the same YAML tags.
type Raw struct {
	Category   string            `yaml:"category"`
	Title      string            `yaml:"title"`
	Objectives map[string]string `yaml:"objectives"`
	Complexity int               `yaml:"complexity"`

	Business struct {
		Rules              []string `yaml:"rules"`
		Integrations       []string `yaml:"integrations"`
		AcceptanceCriteria []string `yaml:"acceptance_criteria"`
		API                *RawAPI  `yaml:"api"`
		Dependencies       string   `yaml:"dependencies"`
	} `yaml:"business"`

	Spike struct {
		Question        string   `yaml:"question"`
		Alternatives    []string `yaml:"alternatives"`
		TimeboxHours    int      `yaml:"timebox_hours"`
		ExpectedOutput  string   `yaml:"expected_output"`
		SuccessCriteria []string `yaml:"success_criteria"`
	} `yaml:"spike"`

	Kaizen struct {
		Process        string   `yaml:"process"`
		CurrentState   string   `yaml:"current_state"`
		Goal           string   `yaml:"goal"`
		Metrics        []string `yaml:"metrics"`
		ExpectedImpact string   `yaml:"expected_impact"`
	} `yaml:"kaizen"`

	Fix struct {
		Description       string   `yaml:"description"`
		ReproductionSteps []string `yaml:"reproduction_steps"`
		ExpectedBehavior  string   `yaml:"expected_behavior"`
		ActualBehavior    string   `yaml:"actual_behavior"`
		Environment       string   `yaml:"environment"`
		Severity          string   `yaml:"severity"`
		Logs              string   `yaml:"logs"`
		Images            []string `yaml:"images"` // paths, relative to the form file
	} `yaml:"fix"`
}

// RawAPI is the api block of a Business form.
type RawAPI struct {
	Method         string `yaml:"method"`
	Endpoint       string `yaml:"endpoint"`
	QueryParams    string `yaml:"query_params"`
	Body           string `yaml:"body"`
	PathParam      string `yaml:"path_param"`
	ResponseFormat string `yaml:"response_format"`
}

// Load reads a form file and resolves its image paths against the file's directory.
func Load(path string) (core.FormSubmission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.FormSubmission{}, fmt.Errorf("failed to read form %s: %w", path, err)
	}
	raw, err := Parse(data)
	if err != nil {
		return core.FormSubmission{}, fmt.Errorf("failed to parse form %s: %w", path, err)
	}
	return raw.Submission(filepath.Dir(path))
}

// Parse decodes a YAML or JSON form.
func Parse(data []byte) (Raw, error) {
	var raw Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Raw{}, err
	}
	return raw, nil
}

// Submission converts the raw form into a submission. Image files are loaded relative to baseDir;
// unreadable images are skipped with a warning.
func (r Raw) Submission(baseDir string) (core.FormSubmission, error) {
	category, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.FormSubmission{}, err
	}

	form := core.FormSubmission{
		Category:   category,
		Title:      r.Title,
		Objectives: core.ObjectivesFromMap(r.Objectives),
		Complexity: r.Complexity,
		Business: core.BusinessFields{
			BusinessRules:      r.Business.Rules,
			Integrations:       r.Business.Integrations,
			AcceptanceCriteria: r.Business.AcceptanceCriteria,
			HasDependencies:    strings.TrimSpace(r.Business.Dependencies) != "",
			Dependencies:       r.Business.Dependencies,
		},
		Spike: core.SpikeFields{
			Question:        r.Spike.Question,
			Alternatives:    r.Spike.Alternatives,
			TimeboxHours:    r.Spike.TimeboxHours,
			ExpectedOutput:  r.Spike.ExpectedOutput,
			SuccessCriteria: r.Spike.SuccessCriteria,
		},
		Kaizen: core.KaizenFields{
			Process:        r.Kaizen.Process,
			CurrentState:   r.Kaizen.CurrentState,
			Goal:           r.Kaizen.Goal,
			Metrics:        r.Kaizen.Metrics,
			ExpectedImpact: r.Kaizen.ExpectedImpact,
		},
		Fix: core.FixFields{
			Description:       r.Fix.Description,
			ReproductionSteps: r.Fix.ReproductionSteps,
			ExpectedBehavior:  r.Fix.ExpectedBehavior,
			ActualBehavior:    r.Fix.ActualBehavior,
			Environment:       r.Fix.Environment,
			Severity:          r.Fix.Severity,
			Logs:              r.Fix.Logs,
		},
	}

	if api := r.Business.API; api != nil {
		form.Business.IsAPI = true
		form.Business.APISpec = &core.APISpec{
			Method:         api.Method,
			Endpoint:       api.Endpoint,
			QueryParams:    api.QueryParams,
			Body:           api.Body,
			PathParam:      api.PathParam,
			ResponseFormat: api.ResponseFormat,
		}
	}

	if len(r.Fix.Images) > 0 {
		paths := make([]string, len(r.Fix.Images))
		for i, p := range r.Fix.Images {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			paths[i] = p
		}
		form.Fix.Attachments = LoadAttachments(paths)
	}
	return form, nil
}

// LoadAttachments reads image files as base64 attachments. Files that cannot be read are skipped
// with a warning.
func LoadAttachments(paths []string) []core.Attachment {
	attachments := make([]core.Attachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("Skipping unreadable image", "path", p, "error", err.Error())
			continue
		}
		if len(data) == 0 {
			logger.Warn("Skipping empty image", "path", p)
			continue
		}
		attachments = append(attachments, core.Attachment{
			Name:      filepath.Base(p),
			MediaType: mediaType(p, data),
			Data:      base64.StdEncoding.EncodeToString(data),
		})
	}
	return attachments
}

func mediaType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "image/") {
		return t
	}
	return http.DetectContentType(data)
}
