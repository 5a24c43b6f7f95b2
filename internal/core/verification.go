package core

import "github.com/valter-silva-au/phasescope/pkg/models"

// verifiedStatuses are the per-feature values that count as verified.
var verifiedStatuses = map[string]bool{
	"verified":  true,
	"complete":  true,
	"completed": true,
}

// AllFeaturesVerified reports whether externally written progress data says
// every tracked feature is verified. Any one of these is enough:
//
//   - a non-empty per-feature status map whose every value is verified,
//     complete or completed
//   - an overall status of "verified"
//   - a summary with verified == total and total > 0
//
// The result is used to force task-level completion even though it is a
// feature-level signal.
func AllFeaturesVerified(p *models.ProgressData) bool {
	if p == nil {
		return false
	}
	if len(p.Features) > 0 {
		all := true
		for _, status := range p.Features {
			if !verifiedStatuses[status.Normalized()] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	if models.StatusValue(p.Status).Normalized() == "verified" {
		return true
	}
	if s := p.Summary; s != nil && s.Total > 0 && s.Verified == s.Total {
		return true
	}
	return false
}

// VerifiedFeatureCount counts per-feature entries marked verified, complete
// or completed. With no per-feature map it falls back to the summary pair.
func VerifiedFeatureCount(p *models.ProgressData) int {
	if p == nil {
		return 0
	}
	if len(p.Features) > 0 {
		n := 0
		for _, status := range p.Features {
			if verifiedStatuses[status.Normalized()] {
				n++
			}
		}
		return n
	}
	if p.Summary != nil && p.Summary.Verified > 0 {
		return p.Summary.Verified
	}
	return 0
}

// taskCounts is the folder-derived task tally shared by the phase analyzer
// and the summary reconciler.
type taskCounts struct {
	total           int
	active          int
	blocked         int
	completedFolder int
	// activeDone is the number of active-folder tasks whose inline status
	// is completed.
	activeDone int
}

func countTasks(lists models.TaskLists) taskCounts {
	c := taskCounts{
		total:           lists.Total(),
		active:          len(lists.Active),
		blocked:         len(lists.Blocked),
		completedFolder: len(lists.Completed),
	}
	for _, t := range lists.Active {
		if t.Status == models.StatusCompleted {
			c.activeDone++
		}
	}
	return c
}

// completed is completed-folder tasks plus active-folder tasks marked done.
func (c taskCounts) completed() int { return c.completedFolder + c.activeDone }

// remaining is active-folder tasks not yet marked done.
func (c taskCounts) remaining() int { return c.active - c.activeDone }
