// Package telemetry — structured logging и метрики.
//
// Логирование строится на log/slog. Конфигурация через окружение:
//   - LOG_LEVEL: DEBUG, INFO, WARN, ERROR (default: INFO)
//   - LOG_FORMAT: json, text (default: json)
//
// Метрики — prometheus-счётчики вызовов каталога, повторных попыток
// и per-file результатов; публикуются через /metrics, когда процесс
// запущен с HTTP-эндпоинтом.
package telemetry
