package models

// LeadSource tags every lead written by the landing page form
const LeadSource = "landing-form"

// ArchivedLead is a lead as kept in the local archive
type ArchivedLead struct {
	ID string `json:"id"`
	LeadSubmission
	Source      string `json:"source"`
	SubmittedAt string `json:"submittedAt"` // RFC 3339, local time
}
