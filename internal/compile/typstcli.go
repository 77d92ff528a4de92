package compile

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/world"
)

// basePPI is the pixel density pages are rendered at when the adapter
// discovers page geometry; points are recovered as px * 72 / basePPI.
const basePPI = 144.0

// CommandCompiler adapts an external compiler binary to the Compiler,
// Rasterizer, and Exporter contracts. Each compile materializes the
// snapshot into a scratch directory so the binary sees the same file
// tree the World exposes through its accessors.
type CommandCompiler struct {
	command  string
	fontDirs []string
	logger   logging.Logger

	// scratch state of the last successful compile; page-level render
	// calls reuse it.
	mu      sync.Mutex
	workDir string
	mainRel string
}

// NewCommandCompiler creates an adapter around the named binary.
func NewCommandCompiler(command string, fontDirs []string, logger logging.Logger) *CommandCompiler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CommandCompiler{
		command:  command,
		fontDirs: fontDirs,
		logger:   logger.WithComponent("typstcli"),
	}
}

// Compile materializes the snapshot and invokes the external binary,
// decoding per-page geometry from the rendered output.
func (c *CommandCompiler) Compile(ctx context.Context, w *world.World, diags *errors.DiagnosticCollector) (*Document, error) {
	if err := c.validateCommand(); err != nil {
		return nil, err
	}

	workDir, mainRel, err := c.materialize(w)
	if err != nil {
		return nil, err
	}

	mainPath := filepath.Join(workDir, mainRel)
	if _, err := os.Stat(mainPath); err != nil {
		return nil, errors.NewNotFoundError("main entry has no source").WithContext("id", string(w.Main()))
	}

	outPattern := filepath.Join(workDir, "page-{n}.png")
	args := []string{"compile", "--root", workDir, "--ppi", fmt.Sprintf("%.0f", basePPI)}
	for _, dir := range c.fontDirs {
		args = append(args, "--font-path", dir)
	}
	args = append(args, mainPath, outPattern)

	c.logger.Debug(ctx, "invoking compiler", "command", c.command, "main", mainRel)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	c.collectDiagnostics(output, diags)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s compile failed: %w: %s", c.command, err, firstErrorLine(output))
	}

	doc, err := c.readPages(workDir)
	if err != nil {
		return nil, err
	}

	c.swapScratch(ctx, workDir, mainRel)
	return doc, nil
}

// swapScratch installs the freshly materialized scratch directory and
// discards the previous one.
func (c *CommandCompiler) swapScratch(ctx context.Context, workDir, mainRel string) {
	c.mu.Lock()
	stale := c.workDir
	c.workDir = workDir
	c.mainRel = mainRel
	c.mu.Unlock()

	if stale != "" && stale != workDir {
		if err := os.RemoveAll(stale); err != nil {
			c.logger.Warn(ctx, err, "cannot remove stale scratch directory", "dir", stale)
		}
	}
}

// scratch returns the scratch state of the last successful compile.
func (c *CommandCompiler) scratch() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workDir, c.mainRel
}

// Render re-rasterizes one page at the requested zoom using the last
// materialized snapshot.
func (c *CommandCompiler) Render(ctx context.Context, page Page, zoom float32) ([]byte, error) {
	workDir, mainRel := c.scratch()
	if workDir == "" {
		return nil, errors.NewRenderError("no compiled document to render", nil)
	}
	if zoom == 1.0 && page.Frame != nil {
		return page.Frame, nil
	}

	out := filepath.Join(workDir, fmt.Sprintf("zoom-%d.png", page.Number))
	args := []string{
		"compile", "--root", workDir,
		"--ppi", fmt.Sprintf("%.0f", basePPI*float64(zoom)),
		"--pages", fmt.Sprintf("%d", page.Number+1),
		filepath.Join(workDir, mainRel), out,
	}
	if data, err := c.run(ctx, workDir, args, out); err == nil {
		return data, nil
	} else {
		return nil, errors.NewRenderError("page rasterization failed", err).WithContext("page", page.Number)
	}
}

// RenderPDF compiles the last materialized snapshot to a single paged
// binary document.
func (c *CommandCompiler) RenderPDF(ctx context.Context, doc *Document) ([]byte, error) {
	workDir, mainRel := c.scratch()
	if workDir == "" {
		return nil, errors.NewRenderError("no compiled document to export", nil)
	}
	out := filepath.Join(workDir, "export.pdf")
	data, err := c.run(ctx, workDir, []string{"compile", "--root", workDir, filepath.Join(workDir, mainRel), out}, out)
	if err != nil {
		return nil, errors.NewRenderError("pdf generation failed", err)
	}
	return data, nil
}

// RenderSVG renders one page as a vector image.
func (c *CommandCompiler) RenderSVG(ctx context.Context, page Page) ([]byte, error) {
	workDir, mainRel := c.scratch()
	if workDir == "" {
		return nil, errors.NewRenderError("no compiled document to export", nil)
	}
	out := filepath.Join(workDir, fmt.Sprintf("export-%d.svg", page.Number))
	args := []string{
		"compile", "--root", workDir, "--format", "svg",
		"--pages", fmt.Sprintf("%d", page.Number+1),
		filepath.Join(workDir, mainRel), out,
	}
	data, err := c.run(ctx, workDir, args, out)
	if err != nil {
		return nil, errors.NewRenderError("svg generation failed", err).WithContext("page", page.Number)
	}
	return data, nil
}

func (c *CommandCompiler) run(ctx context.Context, workDir string, args []string, out string) ([]byte, error) {
	if err := c.validateCommand(); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = workDir
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s failed: %w: %s", c.command, err, firstErrorLine(output))
	}
	return os.ReadFile(out)
}

// materialize writes every store entry under a scratch root so the
// external binary can resolve the exact tree the World exposes.
func (c *CommandCompiler) materialize(w *world.World) (string, string, error) {
	workDir, err := os.MkdirTemp("", "tide-compile-")
	if err != nil {
		return "", "", errors.NewIOError("cannot create scratch directory", err)
	}

	write := func(id fileid.VirtualID, data []byte) error {
		path := filepath.Join(workDir, filepath.FromSlash(strings.TrimPrefix(string(id), "/")))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return errors.NewIOError("cannot create scratch subdirectory", err)
		}
		return os.WriteFile(path, data, 0o600)
	}

	store := w.Store()
	for _, id := range store.IDs(world.EntryKindSource) {
		text, err := store.Source(id)
		if err != nil {
			return "", "", err
		}
		if err := write(id, []byte(text)); err != nil {
			return "", "", err
		}
	}
	for _, id := range store.IDs(world.EntryKindAsset) {
		data, err := store.File(id)
		if err != nil {
			return "", "", err
		}
		if err := write(id, data); err != nil {
			return "", "", err
		}
	}

	mainRel := filepath.FromSlash(strings.TrimPrefix(string(w.Main()), "/"))
	return workDir, mainRel, nil
}

// readPages decodes the rendered page images back into a Document with
// per-page geometry in points. The binary numbers its output from one;
// pages are read in that order until the first missing file.
func (c *CommandCompiler) readPages(workDir string) (*Document, error) {
	doc := &Document{}
	for n := 1; ; n++ {
		data, err := os.ReadFile(filepath.Join(workDir, fmt.Sprintf("page-%d.png", n)))
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return nil, errors.NewIOError("cannot read rendered page", err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, errors.NewRenderError("cannot decode rendered page", err)
		}
		doc.Pages = append(doc.Pages, Page{
			Number:   n - 1,
			WidthPt:  float64(cfg.Width) * 72.0 / basePPI,
			HeightPt: float64(cfg.Height) * 72.0 / basePPI,
			Frame:    data,
		})
	}
	return doc, nil
}

// collectDiagnostics splits compiler stderr into warning diagnostics.
func (c *CommandCompiler) collectDiagnostics(output []byte, diags *errors.DiagnosticCollector) {
	if diags == nil {
		return
	}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "warning:") {
			diags.Add(errors.SeverityWarning, strings.TrimSpace(strings.TrimPrefix(line, "warning:")))
		}
	}
}

func firstErrorLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "error:") {
			return line
		}
	}
	return strings.TrimSpace(string(output))
}

// validateCommand rejects binaries whose name could smuggle shell
// metacharacters through the exec boundary.
func (c *CommandCompiler) validateCommand() error {
	if c.command == "" {
		return errors.NewConfigError("compiler command is empty", nil)
	}
	if strings.ContainsAny(c.command, ";&|$`<>(){}[]!\n\r") {
		return errors.NewConfigError("compiler command contains forbidden characters", nil).
			WithContext("command", c.command)
	}
	return nil
}
