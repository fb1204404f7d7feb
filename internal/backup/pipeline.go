package backup

import (
	"archive/tar"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

// Pack writes the full contents of dir into a single tar container at
// archivePath, gzip-compressed when compress is set. Membership is
// deterministic: every file and subdirectory is included, no exclusions.
func Pack(ctx context.Context, dir, archivePath string, compress bool) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	var w io.Writer = out
	var gz *pgzip.Writer
	if compress {
		gz = pgzip.NewWriter(out)
		w = gz
	}
	tw := tar.NewWriter(w)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// Unpack extracts archivePath into destDir, reproducing the exact file set
// and byte content that was packed. compress must match the flag Pack was
// given for this archive.
func Unpack(ctx context.Context, archivePath, destDir string, compress bool) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	var r io.Reader = in
	if compress {
		gz, err := pgzip.NewReader(in)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	tr := tar.NewReader(r)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(hdr.Mode)&fs.ModePerm); err != nil {
				return fmt.Errorf("create dir %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent of %s: %w", hdr.Name, err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(hdr.Mode)&fs.ModePerm)
			if err != nil {
				return fmt.Errorf("create file %s: %w", hdr.Name, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", hdr.Name, err)
			}
		default:
			// Workspaces only ever contain regular files and directories.
		}
	}
}

// securePath joins name under dir, rejecting entries that would escape it.
func securePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target != dir && !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// EncryptFile encrypts src into dst with AES-256-CTR. The key is the
// configured secret padded or truncated to 32 bytes; a fresh random IV is
// generated per artifact and written as the first block of dst, so identical
// plaintexts never share ciphertext.
func EncryptFile(src, dst, secret string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open plaintext: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create ciphertext: %w", err)
	}
	defer out.Close()

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}
	if _, err := out.Write(iv); err != nil {
		return fmt.Errorf("write iv: %w", err)
	}

	stream, err := ctrStream(secret, iv)
	if err != nil {
		return err
	}
	if _, err := io.Copy(&cipher.StreamWriter{S: stream, W: out}, in); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close ciphertext: %w", err)
	}
	return nil
}

// DecryptFile is the inverse of EncryptFile under the same secret.
func DecryptFile(src, dst, secret string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open ciphertext: %w", err)
	}
	defer in.Close()

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(in, iv); err != nil {
		return fmt.Errorf("read iv: %w", err)
	}

	stream, err := ctrStream(secret, iv)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create plaintext: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, &cipher.StreamReader{S: stream, R: in}); err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close plaintext: %w", err)
	}
	return nil
}

func ctrStream(secret string, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(deriveKey(secret))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return cipher.NewCTR(block, iv), nil
}

// deriveKey pads or truncates the configured secret to the AES-256 key length.
func deriveKey(secret string) []byte {
	key := make([]byte, 32)
	copy(key, secret)
	return key
}
