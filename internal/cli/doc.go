// Package cli — команды rucioflow поверх cobra.
//
// Конвенция вывода: данные — в stdout (таблица или --json),
// сообщения и ошибки — в stderr. Зависимости команд собираются
// лениво через appFn, чтобы help работал без конфигурации.
package cli
