// ABOUTME: Dashboard assembly from a live Repository and plain-text rendering.
// ABOUTME: Every Build reads fresh snapshots; missing collections yield empty sections.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
)

// Dashboard holds the summary metrics and distributions shown on the dashboard.
type Dashboard struct {
	Members             int      `json:"total_members"`
	Assessments         int      `json:"total_assessments"`
	AverageBMI          *float64 `json:"average_bmi"`
	MostCommonCondition string   `json:"most_common_condition,omitempty"`
	GenderDistribution  []Bucket `json:"gender_distribution"`
	BMIHistogram        []Bin    `json:"bmi_histogram"`
	ConditionFrequency  []Bucket `json:"condition_frequency"`
}

type buildOptions struct {
	bins int
}

// Option configures Build.
type Option func(*buildOptions)

// WithBins sets the BMI histogram bin count. Non-positive values keep the default.
func WithBins(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.bins = n
		}
	}
}

// Build reads members, assessments, and conditions from repo and aggregates them.
func Build(repo storage.Repository, opts ...Option) (*Dashboard, error) {
	o := buildOptions{bins: DefaultBins}
	for _, opt := range opts {
		opt(&o)
	}

	members, err := snapshot(repo, storage.CollectionMembers, func() ([]*models.Member, error) {
		return repo.ListMembers(nil)
	})
	if err != nil {
		return nil, err
	}
	assessments, err := snapshot(repo, storage.CollectionAssessments, func() ([]*models.Assessment, error) {
		return repo.ListAssessments(nil)
	})
	if err != nil {
		return nil, err
	}
	conditions, err := snapshot(repo, storage.CollectionConditions, func() ([]*models.Condition, error) {
		return repo.ListConditions(nil)
	})
	if err != nil {
		return nil, err
	}

	return Summarize(members, assessments, conditions, o.bins), nil
}

// Summarize aggregates already-loaded snapshots.
func Summarize(members []*models.Member, assessments []*models.Assessment, conditions []*models.Condition, bins int) *Dashboard {
	d := &Dashboard{
		Members:            MemberCount(members),
		Assessments:        AssessmentCount(assessments),
		GenderDistribution: GenderDistribution(members),
		BMIHistogram:       BMIHistogram(BMIValues(assessments), bins),
		ConditionFrequency: ConditionFrequency(conditions),
	}
	if avg, ok := AverageBMI(assessments); ok {
		d.AverageBMI = &avg
	}
	if name, ok := MostCommonCondition(conditions); ok {
		d.MostCommonCondition = name
	}
	return d
}

// snapshot lists a collection, or returns nothing when it does not exist yet.
func snapshot[T any](repo storage.Repository, collection string, list func() ([]T, error)) ([]T, error) {
	ok, err := repo.Exists(collection)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", collection, err)
	}
	if !ok {
		return nil, nil
	}
	rows, err := list()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return rows, nil
}

const barWidth = 20

// Render writes the dashboard as plain text with bar charts.
func Render(w io.Writer, d *Dashboard) error {
	var sb strings.Builder

	sb.WriteString("FITNESS CENTRE DASHBOARD\n\n")
	avg := "N/A"
	if d.AverageBMI != nil {
		avg = fmt.Sprintf("%.2f", *d.AverageBMI)
	}
	common := d.MostCommonCondition
	if common == "" {
		common = "N/A"
	}
	fmt.Fprintf(&sb, "  %-22s %d\n", "Total Members", d.Members)
	fmt.Fprintf(&sb, "  %-22s %d\n", "Total Assessments", d.Assessments)
	fmt.Fprintf(&sb, "  %-22s %s\n", "Average BMI", avg)
	fmt.Fprintf(&sb, "  %-22s %s\n", "Most Common Condition", common)

	writeBars(&sb, "Gender Distribution", d.GenderDistribution)

	bins := make([]Bucket, 0, len(d.BMIHistogram))
	for _, b := range d.BMIHistogram {
		bins = append(bins, Bucket{Label: fmt.Sprintf("%.1f-%.1f", b.Low, b.High), Count: b.Count})
	}
	writeBars(&sb, "BMI Distribution", bins)

	writeBars(&sb, "Condition Frequency", d.ConditionFrequency)

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBars(sb *strings.Builder, title string, buckets []Bucket) {
	fmt.Fprintf(sb, "\n%s\n", title)
	if len(buckets) == 0 {
		sb.WriteString("  No data\n")
		return
	}

	labelWidth, maxCount := 0, 0
	for _, b := range buckets {
		labelWidth = max(labelWidth, len([]rune(b.Label)))
		maxCount = max(maxCount, b.Count)
	}
	for _, b := range buckets {
		pad := strings.Repeat(" ", labelWidth-len([]rune(b.Label)))
		fmt.Fprintf(sb, "  %s%s %s %d\n", b.Label, pad, bar(b.Count, maxCount), b.Count)
	}
}

// bar scales count against most; any non-zero count gets at least one block.
func bar(count, most int) string {
	if most == 0 || count == 0 {
		return ""
	}
	n := count * barWidth / most
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
