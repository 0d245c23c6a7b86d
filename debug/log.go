package debug

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/polyfrost/go-oneconfig/value"
)

// Logf writes a debug message to stderr. Values and generic maps or
// slices among args are expanded for readability.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *value.Value:
			args[i] = x.Dump()
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
