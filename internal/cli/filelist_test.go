package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/shaiso/Rucioflow/internal/catalog/catalogtest"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/registrar"
)

// --- File List Tests ---

func TestParseFileList(t *testing.T) {
	input := `[
		{"lfn": "a.root", "pfn": "/data/a.root", "scope": "user.bob",
		 "size": 100, "checksum": "ad:0000000a", "guid": "0123456789abcdef0123456789abcdef"},
		{"lfn": "b.root", "pfn": "root://storage.example.org:1094/data/b.root",
		 "size": 200, "checksum": "md5:0123456789abcdef0123456789abcdef"}
	]`

	files, err := parseFileList(strings.NewReader(input), "user.alice")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files: %d", len(files))
	}

	// Явный scope записи имеет приоритет над default'ом
	if files[0].Scope != "user.bob" || files[1].Scope != "user.alice" {
		t.Errorf("scopes: %q, %q", files[0].Scope, files[1].Scope)
	}
	// Заданный GUID нормализуется, отсутствующий генерируется
	if files[0].GUID != "01234567-89ab-cdef-0123-456789abcdef" {
		t.Errorf("guid: %q", files[0].GUID)
	}
	if files[1].GUID == "" {
		t.Error("missing guid not generated")
	}
	for _, f := range files {
		if err := f.Validate(); err != nil {
			t.Errorf("%s: %v", f.LFN, err)
		}
	}
}

func TestParseFileList_BadRecordFailsAlone(t *testing.T) {
	// Вторая запись битая (size не число): список не прерывается,
	// провал достаётся только ей
	input := `[
		{"lfn": "a.root", "pfn": "/data/a.root", "size": 100, "checksum": "ad:0000000a"},
		{"lfn": "b.root", "pfn": "/data/b.root", "size": "not-a-number", "checksum": "ad:0000000b"},
		{"lfn": "c.root", "pfn": "/data/c.root", "size": 300, "checksum": "ad:0000000c"}
	]`

	files, err := parseFileList(strings.NewReader(input), "user.alice")
	if err != nil {
		t.Fatalf("one bad record must not abort the list: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files: %d", len(files))
	}

	if err := files[0].Validate(); err != nil {
		t.Errorf("a.root: %v", err)
	}
	if err := files[2].Validate(); err != nil {
		t.Errorf("c.root: %v", err)
	}
	// Битая запись сохраняет имя файла и падает на валидации
	if files[1].LFN != "b.root" {
		t.Errorf("bad record lost its lfn: %q", files[1].LFN)
	}
	if err := files[1].Validate(); err == nil {
		t.Error("bad record should fail validation")
	}
}

func TestParseFileList_BadRecordBatchOutcome(t *testing.T) {
	input := `[
		{"lfn": "a.root", "pfn": "/data/a.root", "size": 100, "checksum": "ad:0000000a"},
		{"lfn": "b.root", "pfn": "/data/b.root", "size": "not-a-number", "checksum": "ad:0000000b"}
	]`

	files, err := parseFileList(strings.NewReader(input), "user.alice")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	stub := catalogtest.NewStub()
	r := registrar.New(registrar.Config{Catalog: stub})
	result := r.RegisterBatch(context.Background(), files, "TEST_RSE")

	if result.Outcomes[0].Status != domain.OutcomeRegistered {
		t.Errorf("good record: %+v", result.Outcomes[0])
	}
	o := result.Outcomes[1]
	if o.Status != domain.OutcomeFailed || o.Err == nil || o.Err.Kind != domain.KindValidation {
		t.Errorf("bad record: %+v", o)
	}
	if o.Attempts != 0 {
		t.Errorf("bad record reached retry loop: attempts=%d", o.Attempts)
	}
	// В каталог ушла только валидная запись
	if stub.Calls("register_replica") != 1 {
		t.Errorf("catalog calls: %d", stub.Calls("register_replica"))
	}
}

func TestParseFileList_NoScope(t *testing.T) {
	// Запись без scope при пустом default'е не роняет список:
	// она одна получает провал валидации
	input := `[
		{"lfn": "a.root", "pfn": "/data/a.root", "scope": "user.bob",
		 "size": 100, "checksum": "ad:0000000a"},
		{"lfn": "noscope.root", "pfn": "/data/noscope.root",
		 "size": 200, "checksum": "ad:0000000b"}
	]`

	files, err := parseFileList(strings.NewReader(input), "")
	if err != nil {
		t.Fatalf("scopeless record must not abort the list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files: %d", len(files))
	}
	if err := files[0].Validate(); err != nil {
		t.Errorf("a.root: %v", err)
	}
	err = files[1].Validate()
	if err == nil || !strings.Contains(err.Error(), "noscope.root") {
		t.Errorf("validation error should name the record, got %v", err)
	}
}

func TestParseFileList_InvalidJSON(t *testing.T) {
	if _, err := parseFileList(strings.NewReader("{not json"), "user.alice"); err == nil {
		t.Error("expected parse error")
	}
}

// --- Metadata Flag Tests ---

func TestParseMetadata(t *testing.T) {
	meta, err := parseMetadata([]string{"project=higgs", "campaign=2026a"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta["project"] != "higgs" || meta["campaign"] != "2026a" {
		t.Errorf("metadata: %v", meta)
	}

	if _, err := parseMetadata([]string{"noequals"}); err == nil {
		t.Error("expected error for pair without =")
	}
	if _, err := parseMetadata([]string{"=value"}); err == nil {
		t.Error("expected error for empty key")
	}

	meta, err = parseMetadata(nil)
	if err != nil || meta != nil {
		t.Errorf("empty input: %v, %v", meta, err)
	}
}
