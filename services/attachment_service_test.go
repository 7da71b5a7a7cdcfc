package services

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestStoredAttachmentName(t *testing.T) {
	t.Run("shape", func(t *testing.T) {
		name, err := StoredAttachmentName(42, "Regulamento Final.PDF")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		matched, _ := regexp.MatchString(`^evento_42_[0-9a-f]{12}\.pdf$`, name)
		if !matched {
			t.Errorf("stored name %q does not match the expected shape", name)
		}
	})

	t.Run("extension is lowercased", func(t *testing.T) {
		name, err := StoredAttachmentName(1, "foto.JPEG")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(name, ".jpeg") {
			t.Errorf("stored name %q should end in .jpeg", name)
		}
	})

	t.Run("unique per call", func(t *testing.T) {
		a, _ := StoredAttachmentName(1, "a.pdf")
		b, _ := StoredAttachmentName(1, "a.pdf")
		if a == b {
			t.Errorf("two calls produced the same stored name %q", a)
		}
	})

	t.Run("rejected extensions", func(t *testing.T) {
		for _, name := range []string{"virus.exe", "script.sh", "no-extension", "arquivo."} {
			if _, err := StoredAttachmentName(1, name); !errors.Is(err, ErrUnsupportedFileExtension) {
				t.Errorf("StoredAttachmentName(%q) error = %v, want ErrUnsupportedFileExtension", name, err)
			}
		}
	})
}
