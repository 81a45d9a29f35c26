// Package source exposes paged raster inputs: the frames of a drill and
// previously exported PDF documents.
package source

import (
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/renderer"
)

type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Named is implemented by sources whose pages carry a title.
type Named interface {
	PageName(index int) string
}

// baseDPI is the resolution at which the 900x600 canvas maps 1:1 to pixels.
const baseDPI = 96

// DrillSource serves every frame of a drill as one page.
type DrillSource struct {
	frames     []drill.Frame
	background image.Image
}

func NewDrillSource(frames []drill.Frame, background image.Image) *DrillSource {
	return &DrillSource{frames: frames, background: background}
}

func (s *DrillSource) PageCount() int { return len(s.frames) }

func (s *DrillSource) GetPageDimensions(index int) (float64, float64, error) {
	if index < 0 || index >= len(s.frames) {
		return 0, 0, fmt.Errorf("%w: %d", drill.ErrFrameIndex, index)
	}
	return drill.CanvasWidth, drill.CanvasHeight, nil
}

func (s *DrillSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.frames) {
		return nil, fmt.Errorf("%w: %d", drill.ErrFrameIndex, index)
	}
	if dpi <= 0 {
		dpi = baseDPI
	}
	width := int(math.Round(drill.CanvasWidth * float64(dpi) / baseDPI))
	r, err := renderer.NewRaster(renderer.Options{Width: width, Background: s.background})
	if err != nil {
		return nil, err
	}
	return r.Render(s.frames[index])
}

func (s *DrillSource) PageName(index int) string {
	if index < 0 || index >= len(s.frames) {
		return ""
	}
	return s.frames[index].Name
}

func (s *DrillSource) Close() error { return nil }

// FitzPDFSource reads pages of a PDF through MuPDF.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	data []byte
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

// NewFitzPDFSourceFromBytes opens an in-memory PDF, e.g. one just produced by
// document.Export.
func NewFitzPDFSourceFromBytes(data []byte) (*FitzPDFSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, data: data}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens a private document handle so pages can render in parallel.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	var workerDoc *fitz.Document
	var err error
	if f.data != nil {
		workerDoc, err = fitz.NewFromMemory(f.data)
	} else {
		workerDoc, err = fitz.New(f.path)
	}
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

// Text extracts the plain text of a page.
func (f *FitzPDFSource) Text(index int) (string, error) {
	return f.doc.Text(index)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
