package employee

import (
	"net/url"
	"strings"
	"time"
)

const (
	avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

	// DateLayout は StartDate の表記です。
	DateLayout = "2006-01-02"
)

// AvatarURL は名前から決定的に導出される代替写真の URL を返します。
func AvatarURL(name string) string {
	return avatarBaseURL + url.QueryEscape(strings.TrimSpace(name))
}

// PhotoOrAvatar は写真が未設定なら AvatarURL を返します。
func PhotoOrAvatar(photo, name string) string {
	if trimmed := strings.TrimSpace(photo); trimmed != "" {
		return trimmed
	}
	return AvatarURL(name)
}

// ParseStartDate は YYYY-MM-DD 形式の入社日を解釈します。空文字は nil を返します。
func ParseStartDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, ErrInvalidStartDate
	}
	return &t, nil
}

// FormatStartDate は日付を StartDate の表記に変換します。
func FormatStartDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
