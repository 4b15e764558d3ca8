package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	localstore "legalaid-backend/internal/shared/storage/object/local"
)

func TestTextFromBytesPlainText(t *testing.T) {
	text, err := TextFromBytes([]byte("hello legal world"), "text/plain")
	if err != nil {
		t.Fatalf("TextFromBytes: %v", err)
	}
	if text != "hello legal world" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestTextFromBytesUnsupported(t *testing.T) {
	_, err := TextFromBytes([]byte("binary"), "application/zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextFromBytesDocx(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document><w:body><w:p><w:r><w:t>tenancy terms</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	text, err := TextFromBytes(buf.Bytes(), "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err != nil {
		t.Fatalf("TextFromBytes: %v", err)
	}
	if !strings.Contains(text, "tenancy terms") {
		t.Fatalf("expected extracted text, got %q", text)
	}
}

func TestTextReadsFromStore(t *testing.T) {
	store := localstore.New(t.TempDir())
	key, _, _, err := store.Save(context.Background(), "u1", "notes.txt", strings.NewReader("stored content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	text, err := Text(context.Background(), store, key, "text/plain")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "stored content" {
		t.Fatalf("unexpected text: %q", text)
	}
}
