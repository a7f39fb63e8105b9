package timesheet

import "github.com/yukikurage/timetracker-api/internal/models"

// ResolveRate returns the hourly rate to snapshot onto a new entry: the
// member's project override, then the user's own rate, then 0.
// member may be nil for superusers logging on projects they are not part of.
func ResolveRate(member *models.ProjectTeamMember, user *models.User) float64 {
	if member != nil && member.HourlyRate != nil {
		return *member.HourlyRate
	}
	if user != nil && user.HourlyRate != nil {
		return *user.HourlyRate
	}
	return 0
}
