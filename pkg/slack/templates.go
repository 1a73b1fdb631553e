package slack

// Language selects the message table used for notifications.
type Language string

// Supported languages.
const (
	Korean  Language = "ko"
	English Language = "en"
)

// templates holds the labels of a notification message.
type templates struct {
	assignmentHeader string
	prTitleLabel     string
	authorLabel      string
	reviewersLabel   string
	reviewLinkLabel  string
}

var messageTemplates = map[Language]templates{
	Korean: {
		assignmentHeader: "리뷰어로 할당되었습니다!!",
		prTitleLabel:     "PR 제목",
		authorLabel:      "담당자",
		reviewersLabel:   "리뷰어",
		reviewLinkLabel:  "리뷰하러 가기",
	},
	English: {
		assignmentHeader: "You have been assigned as reviewers!!",
		prTitleLabel:     "PR Title",
		authorLabel:      "Author",
		reviewersLabel:   "Reviewers",
		reviewLinkLabel:  "Review PR",
	},
}

// ParseLanguage maps a language code to a supported Language, defaulting to Korean.
func ParseLanguage(code string) Language {
	if _, ok := messageTemplates[Language(code)]; ok {
		return Language(code)
	}
	return Korean
}
