package compare

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSONFormatter renders a comparison set as JSON: compact for piping into
// other tools, indented when Pretty is set.
type JSONFormatter struct {
	Pretty bool
}

// Format encodes the comparison set, without a trailing newline.
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(compSet); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
