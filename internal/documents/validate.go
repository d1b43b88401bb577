package documents

import "bytes"

// pdfMagic is the signature every valid document must start with. Failed
// downloads regularly leave HTML error pages behind with a .pdf name; the
// magic check is what keeps them out of the pipeline.
var pdfMagic = []byte("%PDF")

// IsPDF reports whether data begins with the PDF magic signature.
func IsPDF(data []byte) bool {
	return len(data) >= len(pdfMagic) && bytes.Equal(data[:len(pdfMagic)], pdfMagic)
}
