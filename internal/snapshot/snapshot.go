package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Snapshot maps a section name to its resolved value. Values are string,
// json.Number, bool, nil, []any or map[string]any.
type Snapshot map[string]any

// Section returns the resolved value of name.
func (s Snapshot) Section(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

// Resolver loads snapshots through an Evaluator.
type Resolver struct {
	evaluator Evaluator
	logger    *zap.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(evaluator Evaluator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{evaluator: evaluator, logger: logger}
}

// Resolve evaluates the snapshot at path and decodes the result.
func (r *Resolver) Resolve(ctx context.Context, path string) (Snapshot, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}

	r.logger.Debug("evaluating config cache", zap.String("path", path))
	out, err := r.evaluator.Evaluate(ctx, path)
	if err != nil {
		if errors.Is(err, ErrEvaluator) {
			return nil, err
		}
		return nil, errors.Wrapf(ErrEvaluator, "%s: %v", path, err)
	}

	snap, err := Decode(out)
	if err != nil {
		return nil, errors.WithMessagef(err, "decode %s", path)
	}
	r.logger.Debug("config cache resolved", zap.Int("sections", len(snap)))
	return snap, nil
}

// CheckExists returns ErrSnapshotMissing when nothing exists at path.
func CheckExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrSnapshotMissing, path)
		}
		return errors.Wrapf(ErrSnapshotMissing, "%s: %v", path, err)
	}
	return nil
}

// Decode parses evaluator output. An empty JSON array is an empty snapshot.
func Decode(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrDecode, "trailing data after JSON document")
	}

	switch v := root.(type) {
	case map[string]any:
		return Snapshot(v), nil
	case []any:
		// PHP encodes an array without string keys as a list.
		return Snapshot{}, nil
	default:
		return nil, errors.Wrapf(ErrDecode, "expected an object of sections, got %T", root)
	}
}
