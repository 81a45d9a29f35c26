// Package document lays out the frames of a drill as a fixed-size multi-page PDF.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/drillanim/internal/source"
)

var ErrEmptySource = errors.New("source has no pages")

type Options struct {
	PageSize    string // fpdf size name, e.g. "A4"
	Orientation string // "L" or "P"
	DPI         int    // raster resolution of each frame
	Title       string
	// ShareURL, when set, is printed as a QR code on every page.
	ShareURL string
}

func (o Options) withDefaults() Options {
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.Orientation == "" {
		o.Orientation = "L"
	}
	if o.DPI <= 0 {
		o.DPI = 150
	}
	return o
}

const (
	margin    = 10.0 // mm
	headerH   = 10.0
	captionH  = 8.0
	qrSize    = 28.0
	imageName = "frame-%d"
	qrName    = "share-qr"
)

// Export renders each page of src in order and writes the PDF to w.
func Export(ctx context.Context, src source.Source, w io.Writer, opts Options, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	opts = opts.withDefaults()
	pages := src.PageCount()
	if pages == 0 {
		return ErrEmptySource
	}

	pdf := fpdf.New(opts.Orientation, "mm", opts.PageSize, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("drillanim", false)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	withQR := opts.ShareURL != ""
	if withQR {
		code, err := qrcode.Encode(opts.ShareURL, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		pdf.RegisterImageOptionsReader(qrName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(code))
	}

	named, _ := src.(source.Named)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := src.RenderPage(i, opts.DPI)
		if err != nil {
			return fmt.Errorf("render page %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode page %d: %w", i, err)
		}
		name := fmt.Sprintf(imageName, i)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)

		pdf.AddPage()
		pageW, pageH := pdf.GetPageSize()

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(33, 33, 33)
		if opts.Title != "" {
			pdf.Text(margin, margin+6, tr(opts.Title))
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(pageW-margin-20, margin+6, fmt.Sprintf("%d / %d", i+1, pages))

		// Fit the frame into the area between header and caption, keeping aspect.
		areaW := pageW - 2*margin
		areaH := pageH - 2*margin - headerH - captionH
		if withQR {
			areaW -= qrSize + margin
		}
		b := img.Bounds()
		scale := min(areaW/float64(b.Dx()), areaH/float64(b.Dy()))
		imgW, imgH := float64(b.Dx())*scale, float64(b.Dy())*scale
		x := margin + (areaW-imgW)/2
		y := margin + headerH
		pdf.ImageOptions(name, x, y, imgW, imgH, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		caption := fmt.Sprintf("Frame %d", i+1)
		if named != nil && named.PageName(i) != "" {
			caption = named.PageName(i)
		}
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Text(x, y+imgH+6, tr(caption))

		if withQR {
			pdf.ImageOptions(qrName, pageW-margin-qrSize, pageH-margin-qrSize, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, opts.ShareURL)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("layout page %d: %w", i, err)
		}
		logger.Debug("document page", "page", i+1, "of", pages, "caption", caption)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	logger.Info("exported document", "pages", pages, "size", opts.PageSize)
	return nil
}
