package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/zjy-dev/covguard/internal/issue"
)

const sarifSchema = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
	ID   string `json:"id,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Message   sarifMessage    `json:"message"`
	Level     string          `json:"level"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// ExportSARIF writes the annotations as a SARIF 2.1.0 log at
// outDir/fileBase.sarif and returns its path.
func ExportSARIF(annotations []Annotation, outDir, fileBase, toolName, toolVersion, projectKey string) (string, error) {
	results := make([]sarifResult, 0, len(annotations))
	ruleSet := make(map[string]bool)
	for _, a := range annotations {
		ruleSet[a.Issue.RuleKey] = true
		uri := toURI(a.File.Path)
		if uri == "" {
			uri = "UNKNOWN"
		}
		results = append(results, sarifResult{
			RuleID:  a.Issue.RuleKey,
			Level:   "warning",
			Message: sarifMessage{Text: strings.TrimSpace(a.Issue.Message)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           sarifRegion{StartLine: 1},
				},
			}},
		})
	}

	ruleKeys := make([]string, 0, len(ruleSet))
	for k := range ruleSet {
		ruleKeys = append(ruleKeys, k)
	}
	sort.Strings(ruleKeys)
	rules := make([]sarifRule, 0, len(ruleKeys))
	for _, k := range ruleKeys {
		rules = append(rules, sarifRule{ID: k, ShortDescription: sarifMessage{Text: "Line coverage should not decrease"}})
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    toolName,
				Version: toolVersion,
				Rules:   rules,
			}},
			AutomationDetails: sarifAutomationDetails{
				GUID: uuid.NewString(),
				ID:   projectKey + "/" + issue.RuleSuffix,
			},
			Results: results,
		}},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create sarif directory: %w", err)
	}
	outPath := filepath.Join(outDir, fileBase+".sarif")

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sarif: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sarif: %w", err)
	}
	return outPath, nil
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
