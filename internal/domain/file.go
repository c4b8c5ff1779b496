package domain

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Форматы чексумм: adler32 — 8 hex-символов, md5 — 32 hex-символа.
var (
	adler32Pattern = regexp.MustCompile(`^[a-fA-F0-9]{8}$`)
	md5Pattern     = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
)

// Ограничения на длину идентификаторов (как в каталоге).
const (
	maxLFNLength  = 1024
	maxNameLength = 255
)

// FileInfo описывает один файл для регистрации в каталоге.
//
// Файл уже существует на storage (PFN известен) — система только
// регистрирует его реплику и метаданные.
//
// Identity файла — пара (Scope, LFN). FileInfo — immutable value object:
// после создания поля не меняются.
type FileInfo struct {
	// LFN — логическое имя файла, уникальное в рамках scope.
	LFN string `json:"lfn"`

	// PFN — физическое расположение файла (URI, специфичный для RSE).
	PFN string `json:"pfn"`

	// Scope — namespace, которому принадлежит LFN.
	Scope string `json:"scope"`

	// Size — размер файла в байтах. Строго больше нуля.
	Size int64 `json:"size"`

	// Checksum — дайджест с тегом алгоритма: "ad:<hex>" или "md5:<hex>".
	Checksum string `json:"checksum"`

	// GUID — глобальный идентификатор файла.
	// Генерируется при создании, если не задан.
	GUID string `json:"guid,omitempty"`
}

// DID возвращает полный идентификатор файла в формате "scope:lfn".
func (f FileInfo) DID() string {
	return f.Scope + ":" + f.LFN
}

// Basename возвращает имя файла без пути (последний сегмент LFN).
func (f FileInfo) Basename() string {
	return path.Base(f.LFN)
}

// Validate проверяет поля файла локально, до любого обращения к каталогу.
//
// Порядок проверок фиксирован, возвращается первая найденная ошибка.
func (f FileInfo) Validate() error {
	if f.LFN == "" {
		return fmt.Errorf("%w: empty lfn", ErrValidation)
	}
	if len(f.LFN) > maxLFNLength {
		return fmt.Errorf("%w: lfn exceeds %d characters", ErrValidation, maxLFNLength)
	}
	if f.PFN == "" {
		return fmt.Errorf("%w: empty pfn for %s", ErrValidation, f.LFN)
	}
	if err := validatePFN(f.PFN); err != nil {
		return err
	}
	if f.Scope == "" {
		return fmt.Errorf("%w: empty scope for %s", ErrValidation, f.LFN)
	}
	if f.Size <= 0 {
		return fmt.Errorf("%w: size must be positive for %s, got %d", ErrValidation, f.LFN, f.Size)
	}
	if err := ValidateChecksum(f.Checksum); err != nil {
		return fmt.Errorf("%w (%s)", err, f.LFN)
	}
	return nil
}

// ValidateChecksum проверяет формат чексуммы "<algorithm>:<hex>".
//
// Поддерживаются алгоритмы "ad" (adler32) и "md5".
func ValidateChecksum(checksum string) error {
	if checksum == "" {
		return fmt.Errorf("%w: empty checksum", ErrValidation)
	}

	switch {
	case strings.HasPrefix(checksum, "ad:"):
		if !adler32Pattern.MatchString(checksum[3:]) {
			return fmt.Errorf("%w: invalid adler32 checksum %q", ErrValidation, checksum)
		}
	case strings.HasPrefix(checksum, "md5:"):
		if !md5Pattern.MatchString(checksum[4:]) {
			return fmt.Errorf("%w: invalid md5 checksum %q", ErrValidation, checksum)
		}
	default:
		return fmt.Errorf("%w: unsupported checksum format %q (use ad: or md5:)", ErrValidation, checksum)
	}

	return nil
}

// validatePFN проверяет, что PFN — URL с протоколом или абсолютный путь.
func validatePFN(pfn string) error {
	if strings.Contains(pfn, "://") {
		if !pfnURLPattern.MatchString(pfn) {
			return fmt.Errorf("%w: invalid pfn url %q", ErrValidation, pfn)
		}
		return nil
	}
	if !strings.HasPrefix(pfn, "/") {
		return fmt.Errorf("%w: pfn must be a url or an absolute path: %q", ErrValidation, pfn)
	}
	return nil
}

var pfnURLPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://.+`)
