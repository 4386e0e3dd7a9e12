package normative_test

import (
	"bytes"

	"github.com/ranis-junior/psychology-reports/internal/normative"
	"github.com/xuri/excelize/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func workbook(sheets map[string][][]any) []byte {
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		Expect(err).To(BeNil())
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			Expect(err).To(BeNil())
			Expect(f.SetSheetRow(name, cell, &row)).To(Succeed())
		}
	}
	Expect(f.DeleteSheet("Sheet1")).To(Succeed())

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	Expect(err).To(BeNil())
	return buf.Bytes()
}

var _ = Describe("normative workbook", func() {
	It("reads one table per sheet using the header names", func() {
		content := workbook(map[string][][]any{
			"Cognitivo": {
				{"raw_score", "initial_age_range", "final_age_range", "developmental_score", "lower_confidence_interval",
					"upper_confidence_interval", "z", "standardized", "see", "information"},
				{12, 4, 6, 5.5, 1.2, 3.4, 0.5, 90, 2.1, 0.8},
				{13, 4, 6, 6.5, 1.3, 3.5, 0.6, 95, 2.2, 0.9},
			},
		})

		sheets, err := normative.ParseWorkbook(content)
		Expect(err).To(BeNil())
		Expect(sheets).To(HaveLen(1))
		Expect(sheets[0].Domain).To(Equal("Cognitivo"))
		Expect(sheets[0].Rows).To(HaveLen(2))
		Expect(sheets[0].Rows[0].RawScore).To(Equal(12))
		Expect(sheets[0].Rows[0].InitialAgeRange).To(Equal(4))
		Expect(sheets[0].Rows[0].Standardized).To(Equal(90))
		Expect(sheets[0].Rows[1].DevelopmentalScore).To(BeNumerically("~", 6.5))
	})

	It("falls back to the positional layout and skips blank rows", func() {
		content := workbook(map[string][][]any{
			"Motor": {
				{"Idade inicial", "Idade final", "Bruto"},
				{10, 12, 7, 1, 0, 0, 0, 101, 0, 0},
				{},
			},
		})

		sheets, err := normative.ParseWorkbook(content)
		Expect(err).To(BeNil())
		Expect(sheets).To(HaveLen(1))
		Expect(sheets[0].Rows).To(HaveLen(1))
		Expect(sheets[0].Rows[0].FinalAgeRange).To(Equal(12))
		Expect(sheets[0].Rows[0].Standardized).To(Equal(101))
	})

	It("rejects inverted age ranges", func() {
		content := workbook(map[string][][]any{
			"Motor": {
				{"header"},
				{12, 10, 7, 1, 0, 0, 0, 101, 0, 0},
			},
		})

		_, err := normative.ParseWorkbook(content)
		Expect(err).ToNot(BeNil())
	})

	It("rejects content that is not a workbook", func() {
		_, err := normative.ParseWorkbook([]byte("not a workbook"))
		Expect(err).To(MatchError(normative.ErrNotAWorkbook))
	})
})
