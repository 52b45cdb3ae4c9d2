package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultPHPBinary is the interpreter used when none is configured.
const DefaultPHPBinary = "php"

// Evaluator materializes a snapshot file as JSON.
type Evaluator interface {
	Evaluate(ctx context.Context, path string) ([]byte, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, path string) ([]byte, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// PHPEvaluator runs the snapshot through a PHP interpreter. Objects are replaced
// by their class name and resources by the string "resource" before encoding.
type PHPEvaluator struct {
	Binary string
}

// NewPHPEvaluator returns an evaluator invoking binary, or DefaultPHPBinary when empty.
func NewPHPEvaluator(binary string) *PHPEvaluator {
	if binary == "" {
		binary = DefaultPHPBinary
	}
	return &PHPEvaluator{Binary: binary}
}

// Evaluate runs the interpreter and returns its standard output.
func (e *PHPEvaluator) Evaluate(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.Binary, "-r", wrapperScript(path))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		evalErr := &EvaluatorError{
			Binary:   e.Binary,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			evalErr.ExitCode = exitErr.ExitCode()
		} else {
			evalErr.Err = err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			evalErr.Err = ctxErr
		}
		return nil, evalErr
	}
	return stdout.Bytes(), nil
}

func wrapperScript(path string) string {
	return fmt.Sprintf(`
function sanitize($data) {
    if (is_array($data)) {
        return array_map('sanitize', $data);
    } elseif (is_object($data)) {
        return get_class($data);
    } elseif (is_resource($data)) {
        return 'resource';
    }
    return $data;
}
echo json_encode(sanitize(include %s));
`, phpString(path))
}

// phpString renders s as a single-quoted PHP literal.
func phpString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
