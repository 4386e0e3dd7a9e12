package report_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// brokenFailStore refuses to record failures.
type brokenFailStore struct {
	report.StatusStore
}

func (brokenFailStore) Fail(context.Context, string, string) error {
	return errors.New("status store down")
}

// fakeRenderer writes a pdf where the engine would and tracks concurrent renders.
type fakeRenderer struct {
	baseDir string
	delay   time.Duration
	err     error

	mu      sync.Mutex
	outputs []string
	active  int32
	peak    int32
}

func (f *fakeRenderer) Render(ctx context.Context, task report.Task, outputName string) error {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.outputs = append(f.outputs, outputName)
	f.mu.Unlock()

	time.Sleep(f.delay)
	if f.err != nil {
		return f.err
	}
	if task.Mode == report.ModeCompile {
		return nil
	}
	return os.WriteFile(filepath.Join(f.baseDir, "pdf", outputName+".pdf"), []byte("%PDF-"+task.ID), 0o600)
}

func (f *fakeRenderer) lastOutput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outputs[len(f.outputs)-1]
}

var _ = Describe("orchestrator", func() {
	var (
		ctx      context.Context
		baseDir  string
		renderer *fakeRenderer
		blobs    *blob.MemoryStore
		status   *report.MemoryStatusStore
		queue    *report.MemoryQueue
	)

	BeforeEach(func() {
		ctx = context.Background()
		baseDir = GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(baseDir, "pdf"), 0o755)).To(Succeed())
		renderer = &fakeRenderer{baseDir: baseDir}
		blobs = blob.NewMemoryStore()
		status = report.NewMemoryStatusStore(time.Minute)
		queue = report.NewMemoryQueue(16)
	})

	newOrchestrator := func(opts ...report.OrchestratorOption) *report.Orchestrator {
		return report.NewOrchestrator(queue, status, renderer, blobs, baseDir, opts...)
	}

	Context("execute", func() {
		It("uploads the rendered pdf and removes the local file", func() {
			o := newOrchestrator()
			task := report.NewTask(report.FinalReport, map[string]string{"id_patient": "1"}, report.ModePDF)
			_, err := o.Enqueue(ctx, task)
			Expect(err).To(BeNil())

			o.Execute(ctx, task)

			output := renderer.lastOutput()
			Expect(blobs.Exists(blob.BucketIdadi, "pdf/"+output)).To(BeTrue())
			Expect(blobs.ContentType(blob.BucketIdadi, "pdf/"+output)).To(Equal("application/pdf"))
			_, err = os.Stat(filepath.Join(baseDir, "pdf", output+".pdf"))
			Expect(os.IsNotExist(err)).To(BeTrue())

			p, err := o.Status(ctx, task.ID)
			Expect(err).To(BeNil())
			Expect(p.Status).To(Equal(report.StatusDone))
			Expect(p.Result).To(Equal(fmt.Sprintf("memory://idadi/pdf/%s?expires=3600", output)))

			p, err = o.Status(ctx, task.ID)
			Expect(err).To(BeNil())
			Expect(p.Status).To(Equal(report.StatusConsumed))
		})

		It("succeeds with an empty result in compile mode", func() {
			o := newOrchestrator()
			task := report.NewTask("final_report", nil, report.ModeCompile)
			o.Execute(ctx, task)

			p, err := o.Status(ctx, task.ID)
			Expect(err).To(BeNil())
			Expect(p.Status).To(Equal(report.StatusDone))
			Expect(p.Result).To(BeEmpty())
			Expect(blobs.Len(blob.BucketIdadi)).To(Equal(0))
		})

		It("records renderer failures", func() {
			renderer.err = report.ErrRenderTimeout
			o := newOrchestrator()
			task := report.NewTask("final_report", nil, report.ModePDF)
			o.Execute(ctx, task)

			p, err := o.Status(ctx, task.ID)
			Expect(err).To(BeNil())
			Expect(p.Status).To(Equal(report.StatusFailed))
			Expect(p.Error).To(ContainSubstring("timed out"))
		})

		It("fails when the engine produced no file", func() {
			renderer.baseDir = GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(renderer.baseDir, "pdf"), 0o755)).To(Succeed())
			o := newOrchestrator()
			task := report.NewTask("final_report", nil, report.ModePDF)
			o.Execute(ctx, task)

			p, err := o.Status(ctx, task.ID)
			Expect(err).To(BeNil())
			Expect(p.Status).To(Equal(report.StatusFailed))
		})
	})

	Context("enqueue", func() {
		It("reports submission failures", func() {
			queue = report.NewMemoryQueue(0)
			o := newOrchestrator()

			_, err := o.Enqueue(ctx, report.NewTask("final_report", nil, report.ModePDF))
			Expect(errors.Is(err, report.ErrTaskSubmission)).To(BeTrue())
		})

		It("logs a failure to record the submission error", func() {
			core, logs := observer.New(zap.ErrorLevel)
			defer zap.ReplaceGlobals(zap.New(core))()

			queue = report.NewMemoryQueue(0)
			o := report.NewOrchestrator(queue, brokenFailStore{StatusStore: status}, renderer, blobs, baseDir)

			_, err := o.Enqueue(ctx, report.NewTask("final_report", nil, report.ModePDF))
			Expect(errors.Is(err, report.ErrTaskSubmission)).To(BeTrue())
			Expect(logs.FilterMessage("failed to record task submission failure").Len()).To(Equal(1))
		})
	})

	Context("workers", func() {
		It("never runs two renders at once", func() {
			renderer.delay = 20 * time.Millisecond
			o := newOrchestrator(report.WithWorkers(4))

			var ids []string
			for i := 0; i < 6; i++ {
				id, err := o.Enqueue(ctx, report.NewTask("final_report", nil, report.ModePDF))
				Expect(err).To(BeNil())
				ids = append(ids, id)
			}

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- o.Start(runCtx) }()

			for _, id := range ids {
				Eventually(func() report.Status {
					p, _ := status.Consume(ctx, id)
					if p.Status == report.StatusConsumed {
						return report.StatusDone
					}
					return p.Status
				}, 5*time.Second).Should(Equal(report.StatusDone))
			}

			cancel()
			Eventually(done).Should(Receive(BeNil()))
			Expect(atomic.LoadInt32(&renderer.peak)).To(Equal(int32(1)))
			Expect(blobs.Len(blob.BucketIdadi)).To(Equal(6))

			entries, err := os.ReadDir(filepath.Join(baseDir, "pdf"))
			Expect(err).To(BeNil())
			for _, e := range entries {
				Expect(strings.HasSuffix(e.Name(), ".pdf")).To(BeFalse())
			}
		})
	})
})
