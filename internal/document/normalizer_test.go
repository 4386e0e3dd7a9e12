package document_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ranis-junior/psychology-reports/internal/document"
)

var _ = Describe("normalizer", func() {
	var (
		ctx     context.Context
		workDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		workDir = GinkgoT().TempDir()
	})

	Context("extension allow-list", func() {
		It("accepts images case-insensitively", func() {
			ext, err := document.ValidateExtension(document.KindImage, "Photo.JPG")
			Expect(err).To(BeNil())
			Expect(ext).To(Equal("jpg"))
		})

		It("accepts office documents and pdfs", func() {
			for _, name := range []string{"a.doc", "b.docx", "c.pdf"} {
				_, err := document.ValidateExtension(document.KindDocument, name)
				Expect(err).To(BeNil())
			}
		})

		It("rejects a pdf sent as an image", func() {
			_, err := document.ValidateExtension(document.KindImage, "report.pdf")
			Expect(errors.Is(err, document.ErrUnsupportedExtension)).To(BeTrue())
		})

		It("rejects files without extension", func() {
			_, err := document.ValidateExtension(document.KindDocument, "README")
			Expect(errors.Is(err, document.ErrUnsupportedExtension)).To(BeTrue())
		})

		It("derives the display name", func() {
			Expect(document.DisplayName("/tmp/Session Notes.DOCX")).To(Equal("session notes"))
		})
	})

	Context("images", func() {
		It("wraps a wide image in a landscape page", func() {
			out, err := document.NewNormalizer().Normalize(ctx, pngImage(300, 100), "png")
			Expect(err).To(BeNil())
			Expect(out.CoverType).To(Equal(document.CoverContentType))

			dims, err := api.PageDims(bytes.NewReader(out.PDF), model.NewDefaultConfiguration())
			Expect(err).To(BeNil())
			Expect(dims).To(HaveLen(1))
			Expect(dims[0].Width).To(BeNumerically(">", dims[0].Height))
		})

		It("wraps a tall image in a portrait page", func() {
			out, err := document.NewNormalizer().Normalize(ctx, pngImage(100, 300), "png")
			Expect(err).To(BeNil())

			dims, err := api.PageDims(bytes.NewReader(out.PDF), model.NewDefaultConfiguration())
			Expect(err).To(BeNil())
			Expect(dims[0].Width).To(BeNumerically("<", dims[0].Height))
		})

		It("flattens transparency onto white in the cover", func() {
			out, err := document.NewNormalizer().Normalize(ctx, pngImage(100, 100), "png")
			Expect(err).To(BeNil())

			cover, err := png.Decode(bytes.NewReader(out.Cover))
			Expect(err).To(BeNil())
			r, g, b, a := cover.At(10, 10).RGBA()
			Expect([]uint32{r, g, b, a}).To(Equal([]uint32{0xffff, 0xffff, 0xffff, 0xffff}))
			Expect(color.RGBAModel.Convert(cover.At(90, 10)).(color.RGBA).R).To(Equal(uint8(200)))
		})

		It("keeps the image size in the cover", func() {
			out, err := document.NewNormalizer().Normalize(ctx, pngImage(1600, 900), "png")
			Expect(err).To(BeNil())

			cover, err := png.Decode(bytes.NewReader(out.Cover))
			Expect(err).To(BeNil())
			Expect(cover.Bounds().Dx()).To(Equal(1600))
			Expect(cover.Bounds().Dy()).To(Equal(900))
		})

		It("reports undecodable images as conversion errors", func() {
			_, err := document.NewNormalizer().Normalize(ctx, []byte("not an image"), "jpg")
			var convErr *document.ConversionError
			Expect(errors.As(err, &convErr)).To(BeTrue())
			Expect(convErr.Stage).To(Equal("image"))
		})
	})

	Context("input checks", func() {
		It("rejects empty input", func() {
			_, err := document.NewNormalizer().Normalize(ctx, nil, "pdf")
			Expect(errors.Is(err, document.ErrEmptyInput)).To(BeTrue())
		})

		It("rejects unknown extensions without running anything", func() {
			called := false
			n := document.NewNormalizer(document.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
				called = true
				return nil, nil
			}))
			_, err := n.Normalize(ctx, []byte("x"), "exe")
			Expect(errors.Is(err, document.ErrUnsupportedExtension)).To(BeTrue())
			Expect(called).To(BeFalse())
		})
	})

	Context("pdf and office documents", func() {
		coverRunner := func(calls *[][]string) document.Runner {
			return func(_ context.Context, name string, args ...string) ([]byte, error) {
				*calls = append(*calls, append([]string{name}, args...))
				switch name {
				case "pdftoppm":
					prefix := args[len(args)-1]
					return nil, os.WriteFile(prefix+".png", pngImage(10, 10), 0o600)
				case "soffice":
					return nil, os.WriteFile(filepath.Join(args[4], "document.pdf"), onePagePDF(), 0o600)
				}
				return nil, errors.New("unexpected binary")
			}
		}

		It("keeps pdf bytes and renders the first page as cover", func() {
			var calls [][]string
			input := onePagePDF()
			n := document.NewNormalizer(document.WithRunner(coverRunner(&calls)), document.WithWorkDir(workDir))

			out, err := n.Normalize(ctx, input, "pdf")
			Expect(err).To(BeNil())
			Expect(out.PDF).To(Equal(input))
			Expect(out.Cover).NotTo(BeEmpty())

			Expect(calls).To(HaveLen(1))
			Expect(calls[0][:10]).To(Equal([]string{"pdftoppm", "-png", "-f", "1", "-l", "1", "-r", "72", "-singlefile", calls[0][9]}))
		})

		It("converts docx through soffice then renders the cover", func() {
			var calls [][]string
			n := document.NewNormalizer(document.WithRunner(coverRunner(&calls)), document.WithWorkDir(workDir))

			out, err := n.Normalize(ctx, []byte("docx bytes"), "docx")
			Expect(err).To(BeNil())
			Expect(out.PDF).NotTo(BeEmpty())

			Expect(calls).To(HaveLen(2))
			Expect(calls[0][:5]).To(Equal([]string{"soffice", "--headless", "--convert-to", "pdf", "--outdir"}))
			Expect(filepath.Base(calls[0][6])).To(Equal("document.docx"))
			Expect(calls[1][0]).To(Equal("pdftoppm"))
		})

		It("removes the work directory on every path", func() {
			n := document.NewNormalizer(document.WithWorkDir(workDir), document.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
				return []byte("boom"), errors.New("exit status 1")
			}))

			_, err := n.Normalize(ctx, []byte("doc"), "doc")
			var convErr *document.ConversionError
			Expect(errors.As(err, &convErr)).To(BeTrue())
			Expect(convErr.Stage).To(Equal("office"))

			entries, err := os.ReadDir(workDir)
			Expect(err).To(BeNil())
			Expect(entries).To(BeEmpty())
		})

		It("reports a hung converter as a timeout", func() {
			n := document.NewNormalizer(
				document.WithWorkDir(workDir),
				document.WithTimeout(50*time.Millisecond),
				document.WithRunner(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
					<-ctx.Done()
					return nil, ctx.Err()
				}),
			)

			_, err := n.Normalize(ctx, []byte("doc"), "doc")
			Expect(errors.Is(err, document.ErrProcessTimeout)).To(BeTrue())

			entries, err := os.ReadDir(workDir)
			Expect(err).To(BeNil())
			Expect(entries).To(BeEmpty())
		})

		It("rejects a corrupt pdf before rendering", func() {
			var calls [][]string
			n := document.NewNormalizer(document.WithRunner(coverRunner(&calls)))

			_, err := n.Normalize(ctx, []byte("%PDF-1.4 garbage"), "pdf")
			Expect(err).NotTo(BeNil())
			Expect(calls).To(BeEmpty())
		})
	})
})
