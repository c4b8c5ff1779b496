package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/catalog/catalogtest"
	"github.com/shaiso/Rucioflow/internal/dataset"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/registrar"
	"github.com/shaiso/Rucioflow/internal/retry"
)

var fastPolicy = retry.Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	MaxDelay:    5 * time.Millisecond,
}

func newTestOrchestrator(stub *catalogtest.Stub, workers int) *Orchestrator {
	return New(Config{
		Registrar: registrar.New(registrar.Config{
			Catalog: stub, Policy: fastPolicy, Workers: workers,
		}),
		Datasets: dataset.New(dataset.Config{
			Catalog: stub, Policy: fastPolicy, Workers: workers,
		}),
	})
}

func testFiles(n int) []domain.FileInfo {
	files := make([]domain.FileInfo, n)
	for i := range files {
		files[i] = domain.FileInfo{
			LFN:      fmt.Sprintf("file-%03d.root", i),
			PFN:      fmt.Sprintf("root://storage.example.org:1094/data/file-%03d.root", i),
			Scope:    "user.alice",
			Size:     int64(1000 + i),
			Checksum: fmt.Sprintf("ad:%08x", 0x1000+i),
		}
	}
	return files
}

// --- Run Tests ---

func TestRun_EndToEnd(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	files := []domain.FileInfo{
		{LFN: "a.root", PFN: "/data/a.root", Scope: "user.alice",
			Size: 100, Checksum: "ad:0000000a"},
		{LFN: "b.root", PFN: "/data/b.root", Scope: "user.alice",
			Size: 200, Checksum: "ad:0000000b"},
	}

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
		Files:   files,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Success() || result.Status() != "success" {
		t.Fatalf("result: status=%s errors=%v", result.Status(), result.Errors)
	}
	if result.Registration.Registered() != 2 || result.Attachment.Registered() != 2 {
		t.Errorf("registered=%d attached=%d",
			result.Registration.Registered(), result.Attachment.Registered())
	}
	if !result.Closed || !result.Dataset.IsClosed() {
		t.Error("dataset not closed")
	}

	// Каталог подтверждает итоговое состояние
	if err := o.Verify(context.Background(), result); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestRun_CreateFailureAborts(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	stub.FailWith("create_dataset", catalog.ErrDenied)

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
		Files:   testFiles(3),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Status() != "failed" || result.Registration != nil {
		t.Errorf("result: %+v", result)
	}
	// До регистрации файлов дело не дошло
	if stub.Calls("register_replica") != 0 {
		t.Errorf("replicas registered despite aborted run")
	}
}

func TestRun_PartialRegistrationProceeds(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 1)

	files := testFiles(5)
	// Третий файл исчерпывает попытки
	stub.FailWith("register_replica",
		nil, nil,
		catalog.ErrTransient, catalog.ErrTransient, catalog.ErrTransient,
	)

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
		Files:   files,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Status() != "partial" {
		t.Fatalf("status=%s", result.Status())
	}
	if result.Registration.Failed() != 1 || result.Registration.Succeeded() != 4 {
		t.Fatalf("registration: failed=%d succeeded=%d",
			result.Registration.Failed(), result.Registration.Succeeded())
	}
	// Присоединяются только успешно зарегистрированные
	if result.Attachment.Len() != 4 || result.Attachment.Failed() != 0 {
		t.Errorf("attachment: %+v", result.Attachment)
	}
	// Dataset закрывается несмотря на частичный провал
	if !result.Closed {
		t.Error("dataset should close after partial registration")
	}
	if err := o.Verify(context.Background(), result); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestRun_CloseFailureReported(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	stub.FailWith("close_dataset",
		catalog.ErrTransient, catalog.ErrTransient, catalog.ErrTransient)

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
		Files:   testFiles(2),
	})
	// Провал close не делает запуск ошибочным: работа сделана
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Closed || result.Status() != "partial" {
		t.Errorf("result: closed=%v status=%s", result.Closed, result.Status())
	}
	if len(result.Errors) == 0 {
		t.Error("close failure must be reported in Errors")
	}
	// Сделанная работа не откатывается
	if result.Attachment.Registered() != 2 {
		t.Errorf("attachment rolled back: %+v", result.Attachment)
	}
}

func TestRun_AdoptAndResume(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	files := testFiles(3)
	spec := Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice", AdoptExisting: true},
		RSE:     "TEST_RSE",
		Files:   files,
	}

	// Первый прогон падает на close: dataset остаётся OPEN
	stub.FailWith("close_dataset",
		catalog.ErrTransient, catalog.ErrTransient, catalog.ErrTransient)
	first, err := o.Run(context.Background(), spec)
	if err != nil || first.Closed {
		t.Fatalf("first run: err=%v closed=%v", err, first.Closed)
	}

	// Повторный прогон adopt'ит dataset и доводит workflow до конца
	second, err := o.Run(context.Background(), spec)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Success() {
		t.Fatalf("second run: status=%s errors=%v", second.Status(), second.Errors)
	}
	// Все файлы уже были: идемпотентный повтор
	if second.Registration.AlreadyExists() != 3 || second.Attachment.AlreadyExists() != 3 {
		t.Errorf("repeat: registration=%+v attachment=%+v",
			second.Registration, second.Attachment)
	}
}

func TestRun_EmptyRSE(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	_, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		Files:   testFiles(1),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if stub.TotalCalls() != 0 {
		t.Errorf("catalog called with invalid spec")
	}
}

func TestRun_NoFiles(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Пустой список файлов — валидный запуск: пустой закрытый dataset
	if !result.Success() || result.Attachment.Len() != 0 {
		t.Errorf("result: status=%s", result.Status())
	}
}

// --- Verify Tests ---

func TestVerify_DetectsOpenDataset(t *testing.T) {
	stub := catalogtest.NewStub()
	o := newTestOrchestrator(stub, 2)

	stub.FailWith("close_dataset",
		catalog.ErrTransient, catalog.ErrTransient, catalog.ErrTransient)

	result, err := o.Run(context.Background(), Spec{
		Dataset: dataset.CreateSpec{Name: "ds1", Scope: "user.alice"},
		RSE:     "TEST_RSE",
		Files:   testFiles(1),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := o.Verify(context.Background(), result); err == nil {
		t.Error("verify should flag an open dataset")
	}
}
