package adapter

import (
	"os"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/refix/internal/model"
)

// ReportStore persists and retrieves run reports.
type ReportStore interface {
	SaveReport(path m.Path, report m.RunReport) error
	LoadReport(path m.Path) (m.RunReport, error)
}

// LocalReportStore stores reports as YAML files.
type LocalReportStore struct{}

// NewReportStore constructs a ReportStore implementation.
func NewReportStore() ReportStore {
	return &LocalReportStore{}
}

type reportYAML struct {
	Path     string             `yaml:"path"`
	Type     string             `yaml:"type"`
	Size     int                `yaml:"size"`
	Fallback bool               `yaml:"fallback,omitempty"`
	DryRun   bool               `yaml:"dry_run,omitempty"`
	Regions  []regionReportYAML `yaml:"regions"`
}

type regionReportYAML struct {
	Kind    string `yaml:"kind"`
	Section string `yaml:"section,omitempty"`
	Member  string `yaml:"member,omitempty"`
	Offset  int    `yaml:"offset"`
	Length  int    `yaml:"length"`
	Matches int    `yaml:"matches"`
	Changed bool   `yaml:"changed"`
}

// SaveReport writes report to path, replacing any previous report.
func (rs *LocalReportStore) SaveReport(path m.Path, report m.RunReport) error {
	doc := reportYAML{
		Path:     string(report.Path),
		Type:     string(report.Type),
		Size:     report.Size,
		Fallback: report.Fallback,
		DryRun:   report.DryRun,
		Regions:  make([]regionReportYAML, 0, len(report.Regions)),
	}

	for _, r := range report.Regions {
		doc.Regions = append(doc.Regions, regionReportYAML{
			Kind:    string(r.Kind),
			Section: r.Section,
			Member:  r.Member,
			Offset:  r.Offset,
			Length:  r.Length,
			Matches: r.Matches,
			Changed: r.Changed,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return errors.Errorf("writing report %s: %w", path, err)
	}

	return nil
}

// LoadReport reads a report written by SaveReport.
func (rs *LocalReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	// #nosec G304 - report path is user supplied
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunReport{}, errors.Errorf("reading report %s: %w", path, err)
	}

	var doc reportYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return m.RunReport{}, errors.Errorf("decoding report %s: %w", path, err)
	}

	report := m.RunReport{
		Path:     m.Path(doc.Path),
		Type:     m.FileType(doc.Type),
		Size:     doc.Size,
		Fallback: doc.Fallback,
		DryRun:   doc.DryRun,
		Regions:  make([]m.RegionReport, 0, len(doc.Regions)),
	}

	for _, r := range doc.Regions {
		report.Regions = append(report.Regions, m.RegionReport{
			Kind:    m.TargetKind(r.Kind),
			Section: r.Section,
			Member:  r.Member,
			Offset:  r.Offset,
			Length:  r.Length,
			Matches: r.Matches,
			Changed: r.Changed,
		})
	}

	return report, nil
}
