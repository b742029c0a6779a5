package resolver

import (
	"fmt"
	"strings"

	"github.com/luckysmouk/vidlytics/internal/catalog"
)

const systemPromptHeader = `Ты — классификатор вопросов по видео-аналитике.
Твоя задача: по вопросу пользователя выбрать ровно один метод из каталога
ниже и извлечь его параметры ДОСЛОВНО из текста вопроса.

Правила:
- Ответ — ровно один JSON-объект вида {"method": ..., "params": {...}, "explanation": ...} и ничего больше.
- Даты и периоды передавай в params ТОЧНО в той форме, в которой они
  написаны в вопросе. Не переводи их в другой формат.
- Если вопрос не соответствует ни одному методу каталога, верни
  {"method": "unknown", "params": {}, "explanation": "..."}.
- Никогда не придумывай значения параметров, которых нет в вопросе.`

const fewShotExamples = `Примеры:

Вопрос: Сколько всего видео в базе?
Ответ: {"method": "get_total_videos_count", "params": {}, "explanation": "общее число видео"}

Вопрос: Сколько видео выложил креатор abc-123 с 1 ноября 2025 по 5 ноября 2025?
Ответ: {"method": "get_creator_videos_count_in_period", "params": {"creator_id": "abc-123", "period": "с 1 ноября 2025 по 5 ноября 2025"}, "explanation": "число видео креатора за период"}

Вопрос: Сколько видео набрало больше 100000 просмотров?
Ответ: {"method": "get_videos_with_views_more_than", "params": {"views_threshold": "100000"}, "explanation": "видео с просмотрами выше порога"}

Вопрос: Какой прирост просмотров был 28 ноября 2025?
Ответ: {"method": "get_views_growth_on_date", "params": {"date": "28 ноября 2025"}, "explanation": "суммарный прирост просмотров за дату"}

Вопрос: Сколько видео получили новые просмотры 2025-11-28?
Ответ: {"method": "get_videos_with_new_views_on_date", "params": {"date": "2025-11-28"}, "explanation": "видео с положительным приростом за дату"}

Вопрос: Какая погода в Москве?
Ответ: {"method": "unknown", "params": {}, "explanation": "вопрос не про видео-аналитику"}`

// SystemPrompt renders the full classifier instruction: rules, the
// method catalog, and few-shot examples.
func SystemPrompt() string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	b.WriteString("\n\nКаталог методов:\n")
	b.WriteString(renderCatalog())
	b.WriteString("\n")
	b.WriteString(fewShotExamples)
	return b.String()
}

func renderCatalog() string {
	var b strings.Builder
	for _, d := range catalog.All() {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		for _, p := range d.Params {
			fmt.Fprintf(&b, "    параметр %s (%s): %s\n", p.Name, p.Kind, p.Description)
		}
	}
	fmt.Fprintf(&b, "- %s: вопрос не соответствует ни одному методу\n", catalog.MethodUnknown)
	return b.String()
}

// UserPrompt renders the per-question prompt. Reference context is
// optional and omitted when empty.
func UserPrompt(question, contextText string) string {
	if contextText == "" {
		return fmt.Sprintf("Вопрос: %s\nОтвет:", question)
	}
	return fmt.Sprintf("Справочный контекст:\n%s\n\nВопрос: %s\nОтвет:", contextText, question)
}
