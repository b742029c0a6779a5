package answer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luckysmouk/vidlytics/internal/catalog"
	"github.com/luckysmouk/vidlytics/internal/dates"
	"github.com/luckysmouk/vidlytics/internal/dispatch"
	"github.com/luckysmouk/vidlytics/internal/resolver"
)

const (
	msgCannotUnderstand = "Извините, не удалось понять ваш вопрос. Попробуйте переформулировать."
	msgDatabaseError    = "Ошибка при выполнении запроса к базе данных."
	msgModelUnavailable = "Сервис обработки вопросов временно недоступен. Попробуйте позже."
)

// FormatScalar renders a numeric answer.
func FormatScalar(val int64) string {
	return strconv.FormatInt(val, 10)
}

// FormatError maps every pipeline failure to a fixed Russian sentence.
// Total over the error taxonomy: anything unrecognized falls back to
// the generic cannot-understand message so no raw error text reaches
// the user.
func FormatError(err error) string {
	var (
		dateErr    *dates.DateParseError
		rangeErr   *dates.RangeParseError
		unknownErr *catalog.UnknownIntentError
		missingErr *catalog.MissingParameterError
		invalidErr *catalog.InvalidParameterError
		parseErr   *resolver.ResponseParseError
		unavailErr *resolver.ModelUnavailableError
		execErr    *dispatch.ExecutionError
	)

	switch {
	case errors.As(err, &dateErr):
		return fmt.Sprintf("Не удалось распознать дату «%s». Укажите её, например, как «28 ноября 2025» или «2025-11-28».", dateErr.Text)
	case errors.As(err, &rangeErr):
		return fmt.Sprintf("Не удалось распознать период «%s». Укажите его, например, как «с 1 ноября 2025 по 5 ноября 2025».", rangeErr.Text)
	case errors.As(err, &missingErr):
		return fmt.Sprintf("В вопросе не хватает данных: %s. Пожалуйста, уточните вопрос.", strings.Join(missingErr.Params, ", "))
	case errors.As(err, &invalidErr):
		return fmt.Sprintf("Некорректное значение «%s» для параметра %s. Пожалуйста, уточните вопрос.", invalidErr.Value, invalidErr.Param)
	case errors.As(err, &unknownErr):
		return msgCannotUnderstand
	case errors.As(err, &parseErr):
		return msgCannotUnderstand
	case errors.As(err, &unavailErr):
		return msgModelUnavailable
	case errors.As(err, &execErr):
		return msgDatabaseError
	default:
		return msgCannotUnderstand
	}
}
