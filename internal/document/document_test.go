package document

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/source"
)

func testFrames() []drill.Frame {
	return []drill.Frame{
		{ID: "a", Name: "Start", Elements: []drill.Element{
			{ID: "p1", Kind: drill.KindPlayer, Subtype: drill.PlayerTeam1, X: 100, Y: 100, Size: 1, Text: "1"},
		}},
		{ID: "b", Name: "Finish", Elements: []drill.Element{
			{ID: "p1", Kind: drill.KindPlayer, Subtype: drill.PlayerTeam1, X: 400, Y: 300, Size: 1, Text: "1"},
		}},
		{ID: "c", Name: "Reset"},
	}
}

func TestExportWritesOnePagePerFrame(t *testing.T) {
	var buf bytes.Buffer
	src := source.NewDrillSource(testFrames(), nil)
	err := Export(context.Background(), src, &buf, Options{DPI: 48, Title: "Overlap run", ShareURL: "https://example.com/drills/7"}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("Output is not a PDF")
	}

	back, err := source.NewFitzPDFSourceFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("Reading the PDF back failed: %v", err)
	}
	defer back.Close()
	if back.PageCount() != 3 {
		t.Errorf("Expected 3 pages, got %d", back.PageCount())
	}
	w, h, err := back.GetPageDimensions(0)
	if err != nil {
		t.Fatal(err)
	}
	if w <= h {
		t.Errorf("Expected landscape pages, got %vx%v", w, h)
	}
	text, err := back.Text(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Finish") {
		t.Errorf("Expected caption on page 2, got %q", text)
	}
}

func TestExportEmptySource(t *testing.T) {
	err := Export(context.Background(), source.NewDrillSource(nil, nil), io.Discard, Options{}, nil)
	if err != ErrEmptySource {
		t.Errorf("Expected ErrEmptySource, got %v", err)
	}
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Export(ctx, source.NewDrillSource(testFrames(), nil), io.Discard, Options{DPI: 24}, nil)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
