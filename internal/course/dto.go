package course

type CompletionResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Chapter        *Chapter `json:"chapter"`
	UnitProgress   int      `json:"unitProgress"`
	CourseProgress int      `json:"courseProgress"`
}

type ChapterStatus struct {
	Success     bool `json:"success"`
	IsCompleted bool `json:"isCompleted"`
}

type OverviewResponse struct {
	Success bool     `json:"success"`
	Courses []Course `json:"courses"`
}
