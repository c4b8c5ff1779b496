package registrar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/catalog/catalogtest"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/retry"
)

// fastPolicy — минимальные задержки, чтобы ретраи не тормозили тесты.
var fastPolicy = retry.Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	MaxDelay:    5 * time.Millisecond,
}

func testFile(i int) domain.FileInfo {
	return domain.FileInfo{
		LFN:      fmt.Sprintf("file-%03d.root", i),
		PFN:      fmt.Sprintf("root://storage.example.org:1094/data/file-%03d.root", i),
		Scope:    "user.alice",
		Size:     int64(1000 + i),
		Checksum: fmt.Sprintf("ad:%08x", 0x1000+i),
		GUID:     domain.NewGUID(),
	}
}

func testFiles(n int) []domain.FileInfo {
	files := make([]domain.FileInfo, n)
	for i := range files {
		files[i] = testFile(i)
	}
	return files
}

func newTestRegistrar(stub *catalogtest.Stub, workers int) *Registrar {
	return New(Config{Catalog: stub, Policy: fastPolicy, Workers: workers})
}

// --- RegisterBatch Tests ---

func TestRegisterBatch_AllRegistered(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 4)

	files := testFiles(10)
	result := r.RegisterBatch(context.Background(), files, "TEST_RSE")

	if result.Registered() != 10 || result.Failed() != 0 {
		t.Fatalf("registered=%d failed=%d", result.Registered(), result.Failed())
	}
	// Результаты позиционно соответствуют входу, несмотря на параллелизм
	for i, o := range result.Outcomes {
		if o.File.LFN != files[i].LFN {
			t.Errorf("outcome %d: got %q, want %q", i, o.File.LFN, files[i].LFN)
		}
		if o.Attempts != 1 {
			t.Errorf("outcome %d: attempts=%d", i, o.Attempts)
		}
	}
}

func TestRegisterBatch_IdempotentRepeat(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 2)

	files := testFiles(5)
	first := r.RegisterBatch(context.Background(), files, "TEST_RSE")
	if first.Registered() != 5 {
		t.Fatalf("first run: %d registered", first.Registered())
	}

	// Повторный прогон того же batch'а — успех через ALREADY_EXISTS
	second := r.RegisterBatch(context.Background(), files, "TEST_RSE")
	if second.AlreadyExists() != 5 || second.Failed() != 0 {
		t.Errorf("second run: already_exists=%d failed=%d",
			second.AlreadyExists(), second.Failed())
	}
	if second.Succeeded() != 5 {
		t.Errorf("repeat should count as success, got %d", second.Succeeded())
	}
}

func TestRegisterBatch_ConflictNotRetried(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 1)

	original := testFile(0)
	r.RegisterBatch(context.Background(), []domain.FileInfo{original}, "TEST_RSE")
	callsAfterFirst := stub.Calls("register_replica")

	// Тот же (scope, lfn), другой size: конфликт целостности
	conflicting := original
	conflicting.Size = original.Size + 1

	result := r.RegisterBatch(context.Background(), []domain.FileInfo{conflicting}, "TEST_RSE")
	o := result.Outcomes[0]
	if o.Status != domain.OutcomeFailed || o.Err == nil || o.Err.Kind != domain.KindConflict {
		t.Fatalf("outcome: %+v", o)
	}
	// Конфликт терминален — ровно один вызов, без ретраев
	if got := stub.Calls("register_replica") - callsAfterFirst; got != 1 {
		t.Errorf("conflict retried: %d calls", got)
	}
}

func TestRegisterBatch_ValidationSkipsRemote(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 4)

	invalid := testFile(0)
	invalid.Checksum = "sha256:deadbeef"

	result := r.RegisterBatch(context.Background(), []domain.FileInfo{invalid}, "TEST_RSE")
	o := result.Outcomes[0]
	if o.Status != domain.OutcomeFailed || o.Err == nil || o.Err.Kind != domain.KindValidation {
		t.Fatalf("outcome: %+v", o)
	}
	if o.Attempts != 0 {
		t.Errorf("validation failure must have attempts=0, got %d", o.Attempts)
	}
	if stub.TotalCalls() != 0 {
		t.Errorf("invalid file must never reach the catalog, got %d calls", stub.TotalCalls())
	}
}

func TestRegisterBatch_PartialFailure(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 1) // последовательный порядок вызовов

	files := testFiles(5)
	// Третий файл падает транзиентно на всех трёх попытках
	stub.FailWith("register_replica",
		nil, nil,
		catalog.ErrTransient, catalog.ErrTransient, catalog.ErrTransient,
	)

	result := r.RegisterBatch(context.Background(), files, "TEST_RSE")

	if result.Succeeded() != 4 || result.Failed() != 1 {
		t.Fatalf("succeeded=%d failed=%d", result.Succeeded(), result.Failed())
	}

	o := result.Outcomes[2]
	if o.Status != domain.OutcomeFailed {
		t.Fatalf("outcome 2: %+v", o)
	}
	if o.Err.Kind != domain.KindExhausted {
		t.Errorf("exhausted retries should report EXHAUSTED, got %v", o.Err.Kind)
	}
	if o.Attempts != 3 {
		t.Errorf("attempts=%d", o.Attempts)
	}

	// Падение одного файла не трогает остальные
	for _, i := range []int{0, 1, 3, 4} {
		if !result.Outcomes[i].Succeeded() {
			t.Errorf("outcome %d should succeed: %+v", i, result.Outcomes[i])
		}
	}
}

func TestRegisterBatch_TransientRecovered(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 1)

	stub.FailWith("register_replica", catalog.ErrTransient)

	result := r.RegisterBatch(context.Background(), testFiles(1), "TEST_RSE")
	o := result.Outcomes[0]
	if o.Status != domain.OutcomeRegistered {
		t.Fatalf("outcome: %+v", o)
	}
	if o.Attempts != 2 {
		t.Errorf("attempts=%d, want 2", o.Attempts)
	}
}

func TestRegisterBatch_ContextCancelled(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := r.RegisterBatch(ctx, testFiles(3), "TEST_RSE")
	// Каждый файл всё равно получает свой результат
	if result.Len() != 3 {
		t.Fatalf("len=%d", result.Len())
	}
	for i, o := range result.Outcomes {
		if o.Status != domain.OutcomeFailed {
			t.Errorf("outcome %d after cancel: %+v", i, o)
		}
	}
}

func TestRegisterBatch_Empty(t *testing.T) {
	stub := catalogtest.NewStub()
	r := newTestRegistrar(stub, 4)

	result := r.RegisterBatch(context.Background(), nil, "TEST_RSE")
	if result.Len() != 0 {
		t.Errorf("len=%d", result.Len())
	}
	if stub.TotalCalls() != 0 {
		t.Errorf("empty batch made %d calls", stub.TotalCalls())
	}
}
