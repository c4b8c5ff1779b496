package domain

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ExtractScope извлекает scope из имени dataset'а.
//
// Поддерживаются два формата:
//   - Явный, через двоеточие: "scope:name" ("user.pilot:my.dataset")
//   - Выводимый, через точки: "user.pilot.dataset.name"
//
// Для имён с префиксом "user" или "group" scope — первые две части,
// иначе scope — всё кроме последней части:
//
//	ExtractScope("user.pilot:my.dataset")       → ("user.pilot", "my.dataset")
//	ExtractScope("user.pilot.dataset.name")     → ("user.pilot", "dataset.name")
//	ExtractScope("data.atlas.mc.run123.output") → ("data.atlas.mc.run123", "output")
func ExtractScope(name string) (string, string, error) {
	name = strings.TrimSuffix(name, "/")

	if scope, rest, ok := strings.Cut(name, ":"); ok {
		return strings.TrimSpace(scope), strings.TrimSpace(rest), nil
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: dataset name must contain a dot or a colon: %q", ErrValidation, name)
	}

	if strings.HasPrefix(name, "user") || strings.HasPrefix(name, "group") {
		if len(parts) >= 3 {
			return strings.Join(parts[:2], "."), strings.Join(parts[2:], "."), nil
		}
		return parts[0], strings.Join(parts[1:], "."), nil
	}

	return strings.Join(parts[:len(parts)-1], "."), parts[len(parts)-1], nil
}

// NewGUID генерирует GUID для файла.
func NewGUID() string {
	return uuid.NewString()
}

// FormatGUID приводит GUID к каноническому виду 8-4-4-4-12.
// Строки неожиданной длины возвращаются как есть.
func FormatGUID(guid string) string {
	clean := strings.ReplaceAll(guid, "-", "")
	if len(clean) != 32 {
		return guid
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		clean[0:8], clean[8:12], clean[12:16], clean[16:20], clean[20:32])
}

// DeriveDUID детерминированно выводит идентификатор dataset'а
// из (scope, name), в формате UUID.
//
// Используется как fallback, когда каталог не вернул собственный duid.
func DeriveDUID(scope, name string) string {
	sum := md5.Sum([]byte(scope + ":" + name))
	return FormatGUID(fmt.Sprintf("%x", sum))
}
