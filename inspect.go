package pagepdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageCounter reads the number of pages of a PDF.
type pageCounter interface {
	PageCount(pdf []byte) (int, error)
}

var _ pageCounter = (*pdfcpuCounter)(nil)

// pdfcpuCounter counts pages with pdfcpu, in memory.
type pdfcpuCounter struct {
	conf *model.Configuration
}

func newPDFCPUCounter() *pdfcpuCounter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuCounter{conf: conf}
}

// PageCount implements pageCounter.
func (c *pdfcpuCounter) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), c.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPDFInspection, err)
	}
	return n, nil
}
