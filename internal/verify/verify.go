// Package verify checks that an export actually produced a loadable document.
package verify

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/logger"
	"github.com/Faultbox/arframe/pkg/formats"
)

// ErrExportVerification means the backend reported success but left no usable
// document behind.
var ErrExportVerification = errors.New("export verification failed")

// Result describes a verified document.
type Result struct {
	Path      string
	Size      int64
	Signature formats.Signature
}

// Mismatch reports that the backend wrote a different encoding than requested.
// The backend's choice is authoritative; a mismatch is informational.
type Mismatch struct {
	Requested formats.Encoding
	Detected  formats.Encoding
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("requested %s document, backend wrote %s", m.Requested, m.Detected)
}

// Verify checks the document at path. A missing, empty or unrecognisable file
// fails with ErrExportVerification; an empty file is removed so no corrupt output
// is left behind. When the detected encoding differs from requested, Verify
// succeeds and returns a non-nil Mismatch.
func Verify(path string, requested formats.Encoding) (*Result, *Mismatch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrExportVerification, path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrExportVerification, path)
	}
	if info.Size() == 0 {
		if rerr := os.Remove(path); rerr != nil {
			logger.Warn("Failed to remove empty document", zap.String("path", path), zap.Error(rerr))
		} else {
			logger.Debug("Removed empty document", zap.String("path", path))
		}
		return nil, nil, fmt.Errorf("%w: %s is empty", ErrExportVerification, path)
	}

	sig, err := formats.SniffDocumentFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrExportVerification, path, err)
	}
	if !sig.Known() {
		return nil, nil, fmt.Errorf("%w: %s has unrecognised header %q", ErrExportVerification, path, sig.Magic)
	}

	res := &Result{Path: path, Size: info.Size(), Signature: sig}
	if requested != formats.EncodingUnknown && sig.Encoding != requested {
		return res, &Mismatch{Requested: requested, Detected: sig.Encoding}, nil
	}
	return res, nil, nil
}
