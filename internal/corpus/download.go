package corpus

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/util"
	"golang.org/x/sync/errgroup"
)

var downloadRetry = util.DefaultRetryConfig()

func downloadLJS(ctx context.Context, dir string) error {
	return downloadArchive(ctx, ljsURL, dir)
}

func downloadTHCHS(ctx context.Context, dir string) error {
	return downloadArchive(ctx, thchsURL, dir)
}

// downloadArchive streams a .tar.gz/.tgz/.tar.bz2 archive from url and
// extracts it into dir. Extraction happens in a hidden sibling that is renamed
// to dir once the whole archive was unpacked.
func downloadArchive(ctx context.Context, url, dir string) error {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".download-")
	if err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	util.InfoLog("Downloading %s", url)
	err = util.Retry(ctx, downloadRetry, func() error {
		if err := resetDir(staging); err != nil {
			return err
		}
		return fetchAndExtract(ctx, url, staging)
	}, "download "+url)
	if err != nil {
		os.RemoveAll(staging)
		return err
	}

	if err := os.Rename(staging, dir); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	util.SuccessLog("Downloaded and extracted into %s", dir)
	return nil
}

// resetDir empties dir so a retried download starts from scratch
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear download directory: %w", err)
	}
	return os.MkdirAll(dir, 0755)
}

func fetchAndExtract(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download failed: %s", resp.Status)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return util.Transient(err)
		}
		return err
	}

	pr, pw := io.Pipe()
	progress := util.ByteProgress(resp.ContentLength, "downloading")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(pw, progress), resp.Body)
		pw.CloseWithError(err)
		if err != nil {
			return fmt.Errorf("download interrupted: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		stream, err := decompress(url, pr)
		if err != nil {
			pr.CloseWithError(err)
			return err
		}
		if err := extractTar(gctx, stream, dest); err != nil {
			pr.CloseWithError(err)
			return err
		}
		// drain trailing padding so the download side can finish
		_, err = io.Copy(io.Discard, pr)
		return err
	})

	return g.Wait()
}

func decompress(name string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".tar.bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".tar.gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip stream: %w", util.ErrCorrupt)
		}
		return zr, nil
	case strings.HasSuffix(name, ".tar"):
		return r, nil
	}
	return nil, fmt.Errorf("unknown archive type %s: %w", name, util.ErrUnsupported)
}

// extractTar unpacks regular files and directories of a tar stream into
// dest. Entries escaping dest are rejected; links are skipped.
func extractTar(ctx context.Context, r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	files := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target := filepath.Join(dest, filepath.FromSlash(header.Name))
		if rel, err := filepath.Rel(dest, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination: %w", header.Name, util.ErrCorrupt)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := writeArchiveFile(tr, target); err != nil {
				return err
			}
			files++
		default:
			util.DebugLog("Skipping archive entry %s (type %c)", header.Name, header.Typeflag)
		}
	}

	util.DebugLog("Extracted %d files", files)
	return nil
}

func writeArchiveFile(r io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to extract %s: %w", target, err)
	}
	return f.Close()
}
