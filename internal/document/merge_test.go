package document_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/ranis-junior/psychology-reports/internal/document"
)

var _ = Describe("merge", func() {
	It("keeps every page in input order", func() {
		merged, err := document.Merge([][]byte{onePagePDF(), onePagePDF(), onePagePDF()})
		Expect(err).To(BeNil())

		count, err := document.PageCount(merged)
		Expect(err).To(BeNil())
		Expect(count).To(Equal(3))
	})

	It("sums page counts of multi page inputs", func() {
		two, err := document.Merge([][]byte{onePagePDF(), onePagePDF()})
		Expect(err).To(BeNil())

		merged, err := document.Merge([][]byte{two, onePagePDF()})
		Expect(err).To(BeNil())

		count, err := document.PageCount(merged)
		Expect(err).To(BeNil())
		Expect(count).To(Equal(3))
	})

	It("rejects an empty list", func() {
		_, err := document.Merge(nil)
		Expect(errors.Is(err, document.ErrEmptyInput)).To(BeTrue())
	})

	It("rejects an empty buffer", func() {
		_, err := document.Merge([][]byte{onePagePDF(), {}})
		Expect(errors.Is(err, document.ErrEmptyInput)).To(BeTrue())
	})
})
