package model

import (
	"fmt"
	"math"
)

// DistributionBuckets is the number of equal-width badness buckets.
const DistributionBuckets = 10

// BadnessDistribution summarizes the badness scores of a set of documents.
type BadnessDistribution struct {
	// Buckets counts documents per 0.1-wide score range. The last bucket
	// also holds scores of exactly 1.0.
	Buckets [DistributionBuckets]int `json:"buckets"`

	// BadnessThreshold is the score below which a document counts as clean.
	BadnessThreshold float64 `json:"badness_threshold"`

	// GreekThreshold is the minimum Greek share, as a fraction, for the
	// clean-and-Greek count.
	GreekThreshold float64 `json:"greek_threshold"`

	// CleanGreek is the number of documents below BadnessThreshold whose
	// Greek percentage is at least GreekThreshold*100.
	CleanGreek int `json:"clean_greek"`

	// Total is the number of documents considered.
	Total int `json:"total"`
}

// NewBadnessDistribution creates an empty distribution with the given thresholds.
func NewBadnessDistribution(badnessThreshold, greekThreshold float64) *BadnessDistribution {
	return &BadnessDistribution{
		BadnessThreshold: badnessThreshold,
		GreekThreshold:   greekThreshold,
	}
}

// BucketIndex returns the bucket that score falls into.
func BucketIndex(score float64) int {
	i := int(math.Floor(score * DistributionBuckets))
	return min(max(i, 0), DistributionBuckets-1)
}

// BucketLabel returns the score range of bucket i, for example "0.1-0.2".
func BucketLabel(i int) string {
	lo := float64(i) / DistributionBuckets
	return fmt.Sprintf("%.1f-%.1f", lo, lo+1.0/DistributionBuckets)
}

// Add records one document.
func (d *BadnessDistribution) Add(badness, greekPercentage float64) {
	d.Buckets[BucketIndex(badness)]++
	d.Total++
	if badness < d.BadnessThreshold && greekPercentage >= d.GreekThreshold*100 {
		d.CleanGreek++
	}
}
