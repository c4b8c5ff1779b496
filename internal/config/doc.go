// Package config — конфигурация процесса из переменных окружения.
package config
