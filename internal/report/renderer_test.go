package report_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/ranis-junior/psychology-reports/internal/config"
	"github.com/ranis-junior/psychology-reports/internal/report"
)

var _ = Describe("jar renderer", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.NewDefault()
		cfg.Report.JarPath = "/opt/report"
		cfg.Report.JarName = "engine.jar"
		cfg.Report.BasePath = "/opt/report/reports"
		cfg.Database.Hostname = "db"
		cfg.Database.Name = "psychology"
		cfg.Database.User = "user"
		cfg.Database.Password = "secret"
	})

	It("builds a deterministic command line", func() {
		task := report.NewTask(report.FinalReport, map[string]string{"id_patient": "7", "a": "1"}, report.ModePDF)
		args := report.NewJarRenderer(cfg).Args(task, "out")

		Expect(args).To(Equal([]string{
			"-jar", "/opt/report/engine.jar",
			"--base-dir", "/opt/report/reports",
			"--parameters", "a=1:id_patient=7",
			"--mode", "PDF",
			"--generate-from-file", "final_report",
			"--db-username", "user",
			"--db-password", "secret",
			"--db-host", "db",
			"--db-database", "psychology",
			"--pdf-output-name", "out",
		}))
	})

	It("passes an empty parameter string when there are none", func() {
		args := report.NewJarRenderer(cfg).Args(report.NewTask("x", nil, report.ModeCompile), "out")
		Expect(args[5]).To(Equal(""))
	})

	It("runs java with the built arguments", func() {
		var gotName string
		var gotArgs []string
		r := report.NewJarRenderer(cfg).WithCommand(func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return nil, nil
		})

		task := report.NewTask("x", nil, report.ModeCompile)
		Expect(r.Render(context.Background(), task, "out")).To(Succeed())
		Expect(gotName).To(Equal("java"))
		Expect(gotArgs).To(Equal(r.Args(task, "out")))
	})

	It("reports a deadline as a timeout", func() {
		cfg.Report.Timeout = 20 * time.Millisecond
		r := report.NewJarRenderer(cfg).WithCommand(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			<-ctx.Done()
			return nil, errors.New("signal: killed")
		})

		err := r.Render(context.Background(), report.NewTask("x", nil, report.ModePDF), "out")
		Expect(errors.Is(err, report.ErrRenderTimeout)).To(BeTrue())
	})

	It("includes the engine output in failures", func() {
		r := report.NewJarRenderer(cfg).WithCommand(func(context.Context, string, ...string) ([]byte, error) {
			return []byte("missing template"), errors.New("exit status 1")
		})

		err := r.Render(context.Background(), report.NewTask("x", nil, report.ModePDF), "out")
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("missing template"))
	})
})
