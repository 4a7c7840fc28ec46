// ABOUTME: Aggregate statistics over member, assessment, and condition snapshots.
// ABOUTME: Pure functions; nothing here touches storage or caches results.
package report

import (
	"math"
	"sort"

	"github.com/harperreed/fitcentre/internal/models"
)

// DefaultBins is the BMI histogram bin count when none is configured.
const DefaultBins = 10

// Bucket is a labeled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bin is one histogram interval. Bins are [Low, High) except the last, which is [Low, High].
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// MemberCount returns the number of members.
func MemberCount(members []*models.Member) int {
	return len(members)
}

// AssessmentCount returns the number of assessments.
func AssessmentCount(assessments []*models.Assessment) int {
	return len(assessments)
}

// BMIValues collects the BMI of every assessment that recorded one.
func BMIValues(assessments []*models.Assessment) []float64 {
	var values []float64
	for _, a := range assessments {
		if a.BMI != nil {
			values = append(values, *a.BMI)
		}
	}
	return values
}

// AverageBMI returns the mean BMI. ok is false when no assessment has a BMI.
func AverageBMI(assessments []*models.Assessment) (avg float64, ok bool) {
	values := BMIValues(assessments)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// MostCommonCondition returns the most frequent condition name.
// Ties go to the name seen first; ok is false when there are no conditions.
func MostCommonCondition(conditions []*models.Condition) (name string, ok bool) {
	freq := ConditionFrequency(conditions)
	if len(freq) == 0 {
		return "", false
	}
	return freq[0].Label, true
}

// ConditionFrequency counts conditions by name, most frequent first.
// Equal counts keep first-seen order.
func ConditionFrequency(conditions []*models.Condition) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, c := range conditions {
		i, seen := index[c.Name]
		if !seen {
			i = len(buckets)
			index[c.Name] = i
			buckets = append(buckets, Bucket{Label: c.Name})
		}
		buckets[i].Count++
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// GenderDistribution counts members per gender in enumeration order, then Unknown.
// Empty or unrecognised genders count as Unknown; zero buckets are omitted.
func GenderDistribution(members []*models.Member) []Bucket {
	counts := make(map[string]int)
	for _, m := range members {
		label := string(m.Gender)
		if !models.IsValidGender(label) {
			label = models.GenderUnknown
		}
		counts[label]++
	}

	var buckets []Bucket
	for _, g := range models.AllGenders {
		if n := counts[string(g)]; n > 0 {
			buckets = append(buckets, Bucket{Label: string(g), Count: n})
		}
	}
	if n := counts[models.GenderUnknown]; n > 0 {
		buckets = append(buckets, Bucket{Label: models.GenderUnknown, Count: n})
	}
	return buckets
}

// BMIHistogram splits values into equal-width bins over [min, max].
// When every value is equal the range widens to [v-0.5, v+0.5]. Empty input yields nil.
func BMIHistogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	out[bins-1].High = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
