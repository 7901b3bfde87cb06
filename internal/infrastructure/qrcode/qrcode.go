// Package qrcode renders document links as PNG QR codes on disk.
package qrcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hilthontt/doctrack/internal/domain"
	"rsc.io/qr"
)

// URLPrefix is where the HTTP layer serves the image directory.
const URLPrefix = "/qrcodes"

var levels = map[string]qr.Level{
	"L": qr.L,
	"M": qr.M,
	"Q": qr.Q,
	"H": qr.H,
}

type Generator struct {
	dir   string
	level qr.Level
	scale int
}

// NewGenerator writes images into dir. Unknown levels fall back to M and
// non-positive scales to the library default.
func NewGenerator(dir, level string, scale int) *Generator {
	lvl, ok := levels[strings.ToUpper(level)]
	if !ok {
		lvl = qr.M
	}
	return &Generator{dir: dir, level: lvl, scale: scale}
}

var _ domain.CodeGenerator = (*Generator)(nil)

func (g *Generator) Generate(ctx context.Context, documentID, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := g.filePath(documentID)
	if err != nil {
		return err
	}

	code, err := qr.Encode(payload, g.level)
	if err != nil {
		return fmt.Errorf("encode qr for %s: %w", documentID, err)
	}
	if g.scale > 0 {
		code.Scale = g.scale
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", g.dir, err)
	}
	if err := os.WriteFile(file, code.PNG(), 0o644); err != nil {
		return fmt.Errorf("write qr for %s: %w", documentID, err)
	}
	return nil
}

func (g *Generator) URL(documentID string) (string, error) {
	file, err := g.filePath(documentID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrCodeNotFound, documentID)
	}

	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrCodeNotFound, documentID)
		}
		return "", err
	}
	return path.Join(URLPrefix, documentID+".png"), nil
}

// Dir is the directory served under URLPrefix.
func (g *Generator) Dir() string {
	return g.dir
}

func (g *Generator) filePath(documentID string) (string, error) {
	if documentID == "" || strings.ContainsAny(documentID, `/\`) || documentID == "." || documentID == ".." {
		return "", fmt.Errorf("%w: bad document id %q", domain.ErrInvalidInput, documentID)
	}
	return filepath.Join(g.dir, documentID+".png"), nil
}
