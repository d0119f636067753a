package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// decodeAttrs parses a JSON object of attribute values. Whole numbers
// decode as int64 so attribute equality behaves the same whether a value
// came from the CLI or from Go code.
func decodeAttrs(raw string) (bitemporal.Attrs, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid attrs JSON: %w", err)
	}

	attrs := make(bitemporal.Attrs, len(m))
	for k, v := range m {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				attrs[k] = i
				continue
			}
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", k, err)
			}
			attrs[k] = f
			continue
		}
		attrs[k] = v
	}
	return attrs, nil
}

// parseTemporalArg parses one temporal argument: either an instant
// ("5", "inf", "2024-01-02T15:04:05Z") or a valid-time range "begin..end".
func parseTemporalArg(s string) (any, error) {
	if begin, end, ok := strings.Cut(s, ".."); ok {
		b, err := temporal.ParseInstant(begin)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		e, err := temporal.ParseInstant(end)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		return temporal.NewInterval(b, e), nil
	}
	at, err := temporal.ParseInstant(s)
	if err != nil {
		return nil, err
	}
	return at, nil
}

// parseTemporalArgs parses positional temporal arguments for the read and
// delete commands. The results feed the engine's slice coercion rules.
func parseTemporalArgs(args []string) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, s := range args {
		v, err := parseTemporalArg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
