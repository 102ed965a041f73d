package presenter

import (
	"fmt"
	"strings"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HOMETASK PRESENTER
// Renders a day's lessons as legacy-Markdown text. Subject and homework
// go inside one code span so stray characters in teachers' text cannot
// break the markup; attachments become plain links.
// ══════════════════════════════════════════════════════════════════════════════

// HometaskPresenter renders day sheets.
type HometaskPresenter struct{}

// NewHometaskPresenter creates a new HometaskPresenter.
func NewHometaskPresenter() *HometaskPresenter {
	return &HometaskPresenter{}
}

// DayHeader renders the message header, mentioning who picked the date
// so group members can tell requests apart.
func (p *HometaskPresenter) DayHeader(userID int64, userName string, date string) string {
	return fmt.Sprintf("[%s](tg://user?id=%d), задания на %s:\n\n", userName, userID, date)
}

// DaySheet renders all lessons of a day.
func (p *HometaskPresenter) DaySheet(sheet *daybook.DaySheet) string {
	if sheet.IsEmpty() {
		return "На " + timeutil.FormatDiary(sheet.Date) + " ничего не задано."
	}

	var b strings.Builder
	for _, lesson := range sheet.Lessons {
		if lesson.Subject == "" {
			continue
		}
		p.writeLesson(&b, &lesson)
	}
	if b.Len() == 0 {
		return "На " + timeutil.FormatDiary(sheet.Date) + " ничего не задано."
	}
	return b.String()
}

func (p *HometaskPresenter) writeLesson(b *strings.Builder, lesson *daybook.Lesson) {
	b.WriteString("`")
	b.WriteString(lesson.Subject)
	b.WriteString(": ")

	if text, ok := lesson.HometaskText(); ok {
		b.WriteString(text)
	} else {
		b.WriteString("Ничего")
	}
	if theme, ok := lesson.ThemeText(); ok {
		b.WriteString(" | Тема: ")
		b.WriteString(theme)
	}
	b.WriteString("`\n")

	if lesson.Hometask != nil {
		for _, attachment := range lesson.Hometask.Attachments {
			b.WriteString("[Файлы](")
			b.WriteString(attachment.URL)
			b.WriteString(")\n")
		}
	}
}
