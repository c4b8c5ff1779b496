package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shaiso/Rucioflow/internal/domain"
)

// fileRecord — одна запись входного JSON-списка файлов.
type fileRecord struct {
	LFN      string `json:"lfn"`
	PFN      string `json:"pfn"`
	Scope    string `json:"scope,omitempty"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	GUID     string `json:"guid,omitempty"`
}

// ReadFileList читает JSON-список файлов из path ("-" — stdin).
//
// Формат — массив объектов {lfn, pfn, scope, size, checksum, guid}.
// Scope и GUID опциональны: scope берётся из defaultScope, GUID
// генерируется. Ошибка разбора одной записи не прерывает список.
func ReadFileList(path, defaultScope string) ([]domain.FileInfo, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file list: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseFileList(r, defaultScope)
}

// parseFileList разбирает список. Ошибкой всего списка считается
// только нечитаемый верхний уровень; каждая запись разбирается
// отдельно, и битая запись стоит результата только самой себе.
func parseFileList(r io.Reader, defaultScope string) ([]domain.FileInfo, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse file list: %w", err)
	}

	files := make([]domain.FileInfo, len(raw))
	for i, data := range raw {
		files[i] = parseFileRecord(data, defaultScope)
	}
	return files, nil
}

// parseFileRecord разбирает одну запись.
//
// Запись с неверными типами или без scope не отбрасывается здесь:
// из неё собирается FileInfo, который не пройдёт Validate и получит
// FAILED/VALIDATION в batch-результате, не дойдя до каталога.
// Остальные записи списка обрабатываются как обычно.
func parseFileRecord(data json.RawMessage, defaultScope string) domain.FileInfo {
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Вытаскиваем строковые поля, чтобы провал был привязан
		// к конкретному файлу, а не к безымянной записи
		var loose map[string]any
		json.Unmarshal(data, &loose)
		lfn, _ := loose["lfn"].(string)
		pfn, _ := loose["pfn"].(string)
		scope, _ := loose["scope"].(string)
		if scope == "" {
			scope = defaultScope
		}
		return domain.FileInfo{LFN: lfn, PFN: pfn, Scope: scope}
	}

	scope := rec.Scope
	if scope == "" {
		scope = defaultScope
	}

	guid := rec.GUID
	if guid == "" {
		guid = domain.NewGUID()
	}

	return domain.FileInfo{
		LFN:      rec.LFN,
		PFN:      rec.PFN,
		Scope:    scope,
		Size:     rec.Size,
		Checksum: rec.Checksum,
		GUID:     domain.FormatGUID(guid),
	}
}
