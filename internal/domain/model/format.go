package model

import (
	"math"
	"strconv"
)

// categoryLabels - отображаемые названия фиксированных категорий.
var categoryLabels = map[Category]string{
	CategoryLabResults:    "Lab Results",
	CategoryPrescriptions: "Prescriptions",
	CategoryImaging:       "Imaging",
	CategoryReports:       "Reports",
	CategoryOther:         "Other",
}

// CategoryLabel возвращает название категории.
// Для неизвестных значений возвращается исходная строка.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[Category(category)]; ok {
		return label
	}
	return category
}

// sizeUnits - единицы FormatSize, основание 1024.
var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize форматирует размер в байтах для отображения.
// Выбирается наибольшая единица из B, KB, MB, GB, для которой значение >= 1,
// значение округляется до двух знаков (половина - от нуля), хвостовые нули отбрасываются.
// 0 → "0 B", 1536 → "1.5 KB", 245000 → "239.26 KB".
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return strconv.FormatInt(bytes, 10) + " " + sizeUnits[0]
	}

	// Целочисленный подбор единицы эквивалентен floor(log(bytes)/log(1024)),
	// но не страдает от погрешности на точных степенях 1024.
	unit := 0
	divisor := int64(1)
	for unit < len(sizeUnits)-1 && bytes >= divisor*1024 {
		divisor *= 1024
		unit++
	}

	value := float64(bytes) / float64(divisor)
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
