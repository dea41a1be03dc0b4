package verify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/logger"
	"github.com/Faultbox/arframe/pkg/formats"
)

func writeDoc(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		requested formats.Encoding
		family    formats.Family
		detected  formats.Encoding
		mismatch  bool
	}{
		{"usda as requested", "#usda 1.0\n(\n)\n", formats.EncodingASCII, formats.FamilyUSD, formats.EncodingASCII, false},
		{"usdc as requested", "PXR-USDC\x00\x00\x00\x00", formats.EncodingBinary, formats.FamilyUSD, formats.EncodingBinary, false},
		{"usda instead of binary", "#usda 1.0\n", formats.EncodingBinary, formats.FamilyUSD, formats.EncodingASCII, true},
		{"glb", "glTF\x02\x00\x00\x00", formats.EncodingBinary, formats.FamilyGLTF, formats.EncodingBinary, false},
		{"gltf json instead of binary", "{\n  \"asset\": {}\n}", formats.EncodingBinary, formats.FamilyGLTF, formats.EncodingASCII, true},
		{"no request", "#usda 1.0\n", formats.EncodingUnknown, formats.FamilyUSD, formats.EncodingASCII, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, "frame.doc", []byte(tt.data))

			res, mm, err := Verify(path, tt.requested)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if res.Path != path || res.Size != int64(len(tt.data)) {
				t.Errorf("unexpected result %+v", res)
			}
			if res.Signature.Family != tt.family || res.Signature.Encoding != tt.detected {
				t.Errorf("expected %s/%s, got %s", tt.family, tt.detected, res.Signature)
			}
			if (mm != nil) != tt.mismatch {
				t.Fatalf("mismatch = %v, want %v", mm, tt.mismatch)
			}
			if mm != nil && (mm.Requested != tt.requested || mm.Detected != tt.detected) {
				t.Errorf("unexpected mismatch %s", mm)
			}
		})
	}
}

func TestVerify_Missing(t *testing.T) {
	_, _, err := Verify(filepath.Join(t.TempDir(), "frame.usd"), formats.EncodingBinary)
	if !errors.Is(err, ErrExportVerification) {
		t.Errorf("expected ErrExportVerification, got %v", err)
	}
}

func TestVerify_EmptyIsRemoved(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "verify.log")
	if err := logger.InitWithFileConfig("debug", logger.FileConfig{Path: logFile, MaxSizeMB: 10}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		logger.Log = zap.NewNop()
		logger.Sugar = logger.Log.Sugar()
	}()

	path := writeDoc(t, "frame.usd", nil)

	_, _, err := Verify(path, formats.EncodingBinary)
	if !errors.Is(err, ErrExportVerification) {
		t.Fatalf("expected ErrExportVerification, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty document left in place")
	}

	logger.Sync()
	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "Removed empty document") {
		t.Errorf("expected removal to be logged, got %q", content)
	}
}

func TestVerify_UnknownSignature(t *testing.T) {
	path := writeDoc(t, "frame.usd", []byte("<html>bad gateway</html>"))

	_, _, err := Verify(path, formats.EncodingASCII)
	if !errors.Is(err, ErrExportVerification) {
		t.Errorf("expected ErrExportVerification, got %v", err)
	}
}

func TestVerify_Directory(t *testing.T) {
	_, _, err := Verify(t.TempDir(), formats.EncodingASCII)
	if !errors.Is(err, ErrExportVerification) {
		t.Errorf("expected ErrExportVerification, got %v", err)
	}
}
