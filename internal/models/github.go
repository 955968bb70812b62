package models

// SearchUser is a GitHub user returned by the user search proxy
type SearchUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
}

// SearchUsersResult mirrors the shape of GitHub's user search response
type SearchUsersResult struct {
	TotalCount int           `json:"total_count"`
	Items      []*SearchUser `json:"items"`
}

// CreateRepoRequest is the payload for creating a repository for the signed-in user
type CreateRepoRequest struct {
	Name              string `json:"name" form:"name" binding:"required"`
	Description       string `json:"description" form:"description"`
	Private           bool   `json:"private" form:"private"`
	AutoInit          bool   `json:"auto_init" form:"auto_init"`
	GitignoreTemplate string `json:"gitignore_template" form:"gitignore_template"`
	LicenseTemplate   string `json:"license_template" form:"license_template"`
}

// FileMatch is a repository path matching a file search
type FileMatch struct {
	Path string `json:"path"`
}

// FileContext is file content trimmed for use as chat context
type FileContext struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// HighlightedFile is a source file rendered for the code viewer
type HighlightedFile struct {
	Path        string `json:"path"`
	Language    string `json:"language"`
	HTML        string `json:"html"`
	LineCount   int    `json:"line_count"`
	GutterWidth int    `json:"gutter_width"`
	Markdown    bool   `json:"markdown"`
}
