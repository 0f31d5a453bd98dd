package form

// DefaultMessage replaces an empty failure message.
const DefaultMessage = "Invalid"

// Result is the outcome of a single rule: either passing or failing with a message.
// The zero value is a failure with DefaultMessage.
type Result struct {
	ok      bool
	exact   bool
	message string
}

// Pass reports a satisfied rule.
func Pass() Result {
	return Result{ok: true}
}

// Fail reports a violated rule. An empty message becomes DefaultMessage.
func Fail(message string) Result {
	return Result{message: message}
}

// OK reports whether the rule passed.
func (r Result) OK() bool {
	return r.ok
}

// Message returns the failure message, or "" for a passing result.
func (r Result) Message() string {
	if r.ok {
		return ""
	}
	if r.message == "" && !r.exact {
		return DefaultMessage
	}
	return r.message
}

// Rule checks one constraint against a field value.
type Rule func(value any) Result

// failVerbatim fails with message as given, including "".
func failVerbatim(message string) Result {
	return Result{exact: true, message: message}
}

// Loose adapts a rule that returns true on success and anything else on
// failure. A string result is used verbatim as the message, even when empty;
// any other non-true value fails with DefaultMessage.
func Loose(check func(value any) any) Rule {
	return func(value any) Result {
		if check == nil {
			return Pass()
		}
		switch out := check(value).(type) {
		case bool:
			if out {
				return Pass()
			}
			return Fail("")
		case string:
			return failVerbatim(out)
		default:
			return Fail("")
		}
	}
}

// Check adapts a predicate and a fixed failure message.
func Check(ok func(value any) bool, message string) Rule {
	return func(value any) Result {
		if ok == nil || ok(value) {
			return Pass()
		}
		return Fail(message)
	}
}
