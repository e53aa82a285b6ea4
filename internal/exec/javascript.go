package exec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"codecollab/internal/models"
)

// evalJavaScript runs code in a fresh goja interpreter. The interpreter has
// no host access; a watchdog interrupts scripts exceeding wallTime.
//
// Output rules: captured console.log lines joined by newlines; with no
// lines, the stringified result of the final expression; with an undefined
// result, a fixed success message. Any throw or interrupt comes back as
// errMsg.
func evalJavaScript(code string, wallTime time.Duration) (output, errMsg string) {
	defer func() {
		if rec := recover(); rec != nil {
			output = ""
			errMsg = fmt.Sprintf("%v", rec)
		}
	}()

	vm := goja.New()

	var logs []string
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, formatArg(arg))
		}
		logs = append(logs, strings.Join(parts, " "))
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	watchdog := time.AfterFunc(wallTime, func() {
		vm.Interrupt("execution timed out")
	})
	defer watchdog.Stop()

	result, err := vm.RunString(code)
	if err != nil {
		if ex, ok := err.(*goja.Exception); ok {
			return "", ex.Value().String()
		}
		return "", err.Error()
	}

	switch {
	case len(logs) > 0:
		return strings.Join(logs, "\n"), ""
	case result != nil && !goja.IsUndefined(result):
		return result.String(), ""
	default:
		return models.NoOutputMessage, ""
	}
}

// formatArg mirrors console.log formatting: objects are pretty-printed as
// JSON, everything else is stringified.
func formatArg(arg goja.Value) string {
	if arg == nil || goja.IsUndefined(arg) {
		return "undefined"
	}
	if goja.IsNull(arg) {
		return "null"
	}
	if obj, ok := arg.(*goja.Object); ok {
		if b, err := json.MarshalIndent(obj.Export(), "", "  "); err == nil {
			return string(b)
		}
	}
	return arg.String()
}
