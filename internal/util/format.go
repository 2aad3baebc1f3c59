package util

import (
	"fmt"
	"time"
)

// HumanFileSize : размер файла в читаемом виде (B/KB/MB) для строк response-таблицы
func HumanFileSize(sizeBytes int64) string {
	switch {
	case sizeBytes <= 0:
		return "0 B"
	case sizeBytes < 1024:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(sizeBytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/(1024*1024))
	}
}

// SheetTimestamp : локальное время в фиксированном формате DD/MM/YYYY HH:MM:SS
func SheetTimestamp(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04:05")
}
