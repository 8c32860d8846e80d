package handler

// GeneralImportRequest triggers a constituency import of one general
// election.
type GeneralImportRequest struct {
	ElectionNumber  int   `json:"election_number"`
	GoverningBodyID int64 `json:"governing_body_id"`
	DryRun          bool  `json:"dry_run"`
}

func (r GeneralImportRequest) validate() string {
	if r.ElectionNumber < 1 {
		return "election_number must be positive"
	}
	if r.GoverningBodyID < 1 {
		return "governing_body_id must be positive"
	}
	return ""
}

// CouncillorsImportRequest triggers a roster import of the sitting 参議院.
type CouncillorsImportRequest struct {
	GoverningBodyID int64 `json:"governing_body_id"`
	DryRun          bool  `json:"dry_run"`
}

func (r CouncillorsImportRequest) validate() string {
	if r.GoverningBodyID < 1 {
		return "governing_body_id must be positive"
	}
	return ""
}

// ProportionalImportRequest triggers a proportional-block import of one
// general election.
type ProportionalImportRequest struct {
	ElectionNumber  int   `json:"election_number"`
	GoverningBodyID int64 `json:"governing_body_id"`
	DryRun          bool  `json:"dry_run"`
}

func (r ProportionalImportRequest) validate() string {
	if r.ElectionNumber < 1 {
		return "election_number must be positive"
	}
	if r.GoverningBodyID < 1 {
		return "governing_body_id must be positive"
	}
	return ""
}

// LinkageRequest triggers parliamentary-group linkage for one election
// term.
type LinkageRequest struct {
	TermNumber      int   `json:"term_number"`
	GoverningBodyID int64 `json:"governing_body_id"`
	DryRun          bool  `json:"dry_run"`
}

func (r LinkageRequest) validate() string {
	if r.TermNumber < 1 {
		return "term_number must be positive"
	}
	if r.GoverningBodyID < 1 {
		return "governing_body_id must be positive"
	}
	return ""
}

// TenureRequest triggers seat-tenure population for one election term.
type TenureRequest struct {
	TermNumber      int    `json:"term_number"`
	GoverningBodyID int64  `json:"governing_body_id"`
	ConferenceName  string `json:"conference_name"`
	DryRun          bool   `json:"dry_run"`
}

func (r TenureRequest) validate() string {
	if r.TermNumber < 1 {
		return "term_number must be positive"
	}
	if r.GoverningBodyID < 1 {
		return "governing_body_id must be positive"
	}
	if r.ConferenceName == "" {
		return "conference_name is required"
	}
	return ""
}
