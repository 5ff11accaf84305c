// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/papergen/internal/project"
	"github.com/pdiddy/papergen/internal/toolchain"
)

// CompileError carries the LaTeX engine's diagnostic output verbatim.
type CompileError struct {
	Tool   string
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, e.Output)
}

func (e *CompileError) Unwrap() error { return e.Err }

// engineArgs maps each supported LaTeX engine to its non-interactive
// invocation of paper.tex.
var engineArgs = map[string][]string{
	"latexmk":  {"-pdf", "-interaction=nonstopmode", texFile},
	"pdflatex": {"-interaction=nonstopmode", texFile},
	"tectonic": {texFile},
}

// Compile runs a LaTeX engine over output/paper.tex and returns the PDF
// path. A nil engine autodetects one from PATH. Engine failures return a
// CompileError with the tool's output attached.
func Compile(p *project.Project, engine toolchain.Runner) (string, error) {
	texPath := filepath.Join(p.OutputDir(), texFile)
	if _, err := os.Stat(texPath); err != nil {
		return "", fmt.Errorf("no %s; run format latex first", texFile)
	}

	if engine == nil {
		var err error
		engine, err = toolchain.LatexEngine()
		if err != nil {
			return "", err
		}
	}

	args, ok := engineArgs[engine.Name()]
	if !ok {
		args = []string{texFile}
	}

	var out bytes.Buffer
	if err := engine.Run(p.OutputDir(), args, &out, &out); err != nil {
		return "", &CompileError{Tool: engine.Name(), Output: out.String(), Err: err}
	}

	return filepath.Join(p.OutputDir(), "paper.pdf"), nil
}
