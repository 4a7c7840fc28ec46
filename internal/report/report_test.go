// ABOUTME: Tests for dashboard statistics, assembly, and rendering.
// ABOUTME: Rendering is checked against testdata/dashboard.golden.
package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := models.ParseDate(s)
	return d
}

func conditions(names ...string) []*models.Condition {
	out := make([]*models.Condition, 0, len(names))
	for i, n := range names {
		out = append(out, models.NewCondition("m"+string(rune('a'+i))+"@x.com", n, ""))
	}
	return out
}

func fixture() ([]*models.Member, []*models.Assessment, []*models.Condition) {
	members := []*models.Member{
		models.NewMember("a@x.com", "Ann", "Lee", models.GenderFemale),
		models.NewMember("b@x.com", "Bea", "Ray", models.GenderFemale),
		models.NewMember("c@x.com", "Cal", "Orr", models.GenderMale),
		models.NewMember("d@x.com", "Dee", "Fox", ""),
	}
	assessments := []*models.Assessment{
		models.NewAssessment("a@x.com", day("2024-01-01")).WithBMI(19),
		models.NewAssessment("b@x.com", day("2024-01-02")).WithBMI(22),
		models.NewAssessment("c@x.com", day("2024-01-03")).WithBMI(23),
		models.NewAssessment("d@x.com", day("2024-01-04")).WithBMI(29),
	}
	return members, assessments, conditions("Knee Pain", "Back Pain", "Knee Pain")
}

func TestAverageBMI(t *testing.T) {
	_, ok := AverageBMI(nil)
	assert.False(t, ok, "no assessments means no average")

	noBMI := []*models.Assessment{models.NewAssessment("a@x.com", day("2024-01-01")).WithWeight(70)}
	_, ok = AverageBMI(noBMI)
	assert.False(t, ok, "assessments without BMI do not count")

	_, assessments, _ := fixture()
	avg, ok := AverageBMI(append(assessments, noBMI...))
	require.True(t, ok)
	assert.InDelta(t, 23.25, avg, 1e-9)
}

func TestMostCommonCondition(t *testing.T) {
	tests := []struct {
		name   string
		input  []*models.Condition
		want   string
		wantOK bool
	}{
		{"empty", nil, "", false},
		{"clear winner", conditions("Knee Pain", "Knee Pain", "Back Pain"), "Knee Pain", true},
		{"winner seen later", conditions("Back Pain", "Knee Pain", "Knee Pain"), "Knee Pain", true},
		{"tie goes to first seen", conditions("Back Pain", "Knee Pain"), "Back Pain", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MostCommonCondition(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionFrequency(t *testing.T) {
	got := ConditionFrequency(conditions("Asthma", "Knee Pain", "Back Pain", "Knee Pain", "Back Pain", "Knee Pain"))
	assert.Equal(t, []Bucket{
		{Label: "Knee Pain", Count: 3},
		{Label: "Back Pain", Count: 2},
		{Label: "Asthma", Count: 1},
	}, got)

	assert.Empty(t, ConditionFrequency(nil))
}

func TestGenderDistribution(t *testing.T) {
	members := []*models.Member{
		models.NewMember("a@x.com", "", "", ""),
		models.NewMember("b@x.com", "", "", models.GenderOther),
		models.NewMember("c@x.com", "", "", models.GenderMale),
		models.NewMember("d@x.com", "", "", models.GenderMale),
		models.NewMember("e@x.com", "", "", models.Gender("legacy")),
	}
	assert.Equal(t, []Bucket{
		{Label: "Male", Count: 2},
		{Label: "Other", Count: 1},
		{Label: "Unknown", Count: 2},
	}, GenderDistribution(members))

	assert.Empty(t, GenderDistribution(nil))
}

func TestBMIHistogram(t *testing.T) {
	assert.Nil(t, BMIHistogram(nil, 10))

	t.Run("spread values", func(t *testing.T) {
		bins := BMIHistogram([]float64{19, 22, 23, 29}, 3)
		require.Len(t, bins, 3)
		assert.Equal(t, []int{2, 1, 1}, counts(bins))
		assert.InDelta(t, 19.0, bins[0].Low, 1e-9)
		assert.Equal(t, 29.0, bins[2].High)
	})

	t.Run("max lands in last bin", func(t *testing.T) {
		bins := BMIHistogram([]float64{0, 10}, 10)
		require.Len(t, bins, 10)
		assert.Equal(t, 1, bins[0].Count)
		assert.Equal(t, 1, bins[9].Count)
	})

	t.Run("single value widens range", func(t *testing.T) {
		bins := BMIHistogram([]float64{22.5, 22.5}, 10)
		require.Len(t, bins, 10)
		assert.InDelta(t, 22.0, bins[0].Low, 1e-9)
		assert.InDelta(t, 23.0, bins[9].High, 1e-9)
		assert.Equal(t, 2, bins[5].Count)
	})

	t.Run("non-positive bins use default", func(t *testing.T) {
		assert.Len(t, BMIHistogram([]float64{20, 25}, 0), DefaultBins)
	})
}

func counts(bins []Bin) []int {
	out := make([]int, len(bins))
	for i, b := range bins {
		out[i] = b.Count
	}
	return out
}

func TestRenderGolden(t *testing.T) {
	members, assessments, conds := fixture()
	d := Summarize(members, assessments, conds, 3)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, d))

	g := goldie.New(t)
	g.Assert(t, "dashboard", buf.Bytes())
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Dashboard{}))

	out := buf.String()
	assert.Contains(t, out, "Average BMI            N/A")
	assert.Contains(t, out, "Most Common Condition  N/A")
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("No data")))
}

func TestBuildFromRepository(t *testing.T) {
	repo, err := storage.Open(filepath.Join(t.TempDir(), "fitcentre.db"))
	require.NoError(t, err)
	defer repo.Close()

	empty, err := Build(repo)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Members)
	assert.Nil(t, empty.AverageBMI)
	assert.Empty(t, empty.MostCommonCondition)

	require.NoError(t, repo.CreateMember(models.NewMember("a@x.com", "Ann", "Lee", models.GenderFemale)))
	require.NoError(t, repo.CreateAssessment(models.NewAssessment("a@x.com", day("2024-01-01")).WithBMI(22.5)))
	require.NoError(t, repo.CreateCondition(models.NewCondition("a@x.com", "Knee Pain", models.SeverityMild)))

	d, err := Build(repo, WithBins(5))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Members)
	assert.Equal(t, 1, d.Assessments)
	require.NotNil(t, d.AverageBMI)
	assert.InDelta(t, 22.5, *d.AverageBMI, 1e-9)
	assert.Equal(t, "Knee Pain", d.MostCommonCondition)
	assert.Len(t, d.BMIHistogram, 5)
	assert.Equal(t, []Bucket{{Label: "Female", Count: 1}}, d.GenderDistribution)

	require.NoError(t, repo.DeleteMember("a@x.com"))
	after, err := Build(repo)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Assessments, "dashboard reflects the current store, not a cached one")
}
