package mask

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNew_InstallsDefaults(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Rules() == 0 {
		t.Error("New() installed no default rules")
	}
}

func TestNew_DisableDefaults(t *testing.T) {
	e, err := New(Config{DisableDefaults: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Rules() != 0 {
		t.Errorf("Rules() = %d, want 0", e.Rules())
	}
}

func TestAddRule_Validation(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})

	tests := []struct {
		name    string
		rule    Rule
		wantErr error
	}{
		{"no matcher", Rule{Strategy: StrategyFull}, ErrNoMatcher},
		{"custom without func", Rule{Name: "x", Strategy: StrategyCustom}, ErrMissingCustomFunc},
		{"unknown strategy", Rule{Name: "x", Strategy: Strategy(42)}, ErrUnknownStrategy},
		{"bad pattern", Rule{Pattern: "(unclosed"}, ErrInvalidPattern},
		{"unsafe pattern", Rule{Pattern: "(a+)+"}, ErrUnsafePattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.AddRule(tt.rule); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddRule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcess_PasswordFullPreserveLength(t *testing.T) {
	e, _ := New(Config{})

	got := e.Process(map[string]any{"password": "secret123"})

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Process() returned %T, want map", got)
	}
	if m["password"] != "*********" {
		t.Errorf("password = %q, want 9 mask characters", m["password"])
	}
}

func TestProcess_EmailPartial(t *testing.T) {
	e, _ := New(Config{})

	got := e.Process(map[string]any{"email": "test@example.com"})

	m := got.(map[string]any)
	if m["email"] != "t***@example.com" {
		t.Errorf("email = %q, want t***@example.com", m["email"])
	}
}

func TestProcess_UnmatchedKeysUnchanged(t *testing.T) {
	e, _ := New(Config{})

	in := map[string]any{
		"orderId":  "ord-1234",
		"quantity": 3,
		"ok":       true,
	}
	got := e.Process(in).(map[string]any)

	if !reflect.DeepEqual(got, in) {
		t.Errorf("Process() = %v, want input unchanged %v", got, in)
	}
}

func TestProcess_PreservesShape(t *testing.T) {
	e, _ := New(Config{})

	in := map[string]any{
		"user": map[string]any{
			"email":    "test@example.com",
			"password": "hunter22",
			"profile": map[string]any{
				"name": "Jo",
				"tags": []any{"a", "b", "c"},
			},
		},
		"items": []any{
			map[string]any{"sku": "X1", "price": 9.5},
			map[string]any{"sku": "X2", "price": 3.25},
		},
		"empty": map[string]any{},
		"none":  nil,
	}

	got := e.Process(in).(map[string]any)

	user := got["user"].(map[string]any)
	if user["password"] != "********" {
		t.Errorf("nested password = %q, want masked", user["password"])
	}
	profile := user["profile"].(map[string]any)
	if profile["name"] != "Jo" {
		t.Errorf("profile.name = %q, want Jo", profile["name"])
	}
	tags := profile["tags"].([]any)
	if len(tags) != 3 || tags[0] != "a" || tags[2] != "c" {
		t.Errorf("profile.tags = %v, want [a b c]", tags)
	}
	items := got["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[1].(map[string]any)["price"] != 3.25 {
		t.Errorf("items[1].price = %v, want 3.25", items[1].(map[string]any)["price"])
	}
	if em, ok := got["empty"].(map[string]any); !ok || len(em) != 0 {
		t.Errorf("empty = %v, want empty map", got["empty"])
	}
	if got["none"] != nil {
		t.Errorf("none = %v, want nil", got["none"])
	}
}

func TestProcess_FullIdempotent(t *testing.T) {
	e, _ := New(Config{})

	once := e.Process(map[string]any{"password": "secret123"}).(map[string]any)
	twice := e.Process(once).(map[string]any)

	if once["password"] != twice["password"] {
		t.Errorf("second Process() = %q, want %q", twice["password"], once["password"])
	}
}

func TestProcess_TokenIdempotent(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})
	if err := e.AddRule(Rule{Name: "ssn", Strategy: StrategyToken}); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	once := e.Process(map[string]any{"ssn": "123-45-6789"}).(map[string]any)
	twice := e.Process(once).(map[string]any)

	if once["ssn"] != DefaultToken || twice["ssn"] != DefaultToken {
		t.Errorf("ssn = %q then %q, want %q both times", once["ssn"], twice["ssn"], DefaultToken)
	}
}

func TestProcess_PriorityWins(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})

	_ = e.AddRule(Rule{Name: "card", Strategy: StrategyToken, Token: "[LOW]", Priority: 1})
	_ = e.AddRule(Rule{Name: "card", Strategy: StrategyToken, Token: "[HIGH]", Priority: 10})

	got := e.Process(map[string]any{"card": "4111111111111111"}).(map[string]any)
	if got["card"] != "[HIGH]" {
		t.Errorf("card = %q, want [HIGH]", got["card"])
	}
}

func TestProcess_EqualPriorityRegistrationOrder(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})

	// Ties break toward the earlier registration.
	_ = e.AddRule(Rule{Name: "card", Strategy: StrategyToken, Token: "[FIRST]", Priority: 5})
	_ = e.AddRule(Rule{Name: "card", Strategy: StrategyToken, Token: "[SECOND]", Priority: 5})

	got := e.Process(map[string]any{"card": "4111111111111111"}).(map[string]any)
	if got["card"] != "[FIRST]" {
		t.Errorf("card = %q, want [FIRST]", got["card"])
	}
}

func TestProcess_CaseInsensitiveKeys(t *testing.T) {
	e, _ := New(Config{})

	got := e.Process(map[string]any{"PASSWORD": "secret123"}).(map[string]any)
	if got["PASSWORD"] != "*********" {
		t.Errorf("PASSWORD = %q, want masked", got["PASSWORD"])
	}
}

func TestProcess_CustomPanicFallsBack(t *testing.T) {
	var diag error
	e, _ := New(Config{
		DisableDefaults: true,
		OnError:         func(err error) { diag = err },
	})
	_ = e.AddRule(Rule{
		Name:     "pin",
		Strategy: StrategyCustom,
		Custom:   func(any) string { panic("custom exploded") },
	})

	got := e.Process(map[string]any{"pin": "0000"}).(map[string]any)

	if got["pin"] != fallbackMask {
		t.Errorf("pin = %q, want %q", got["pin"], fallbackMask)
	}
	if diag != nil {
		t.Errorf("custom panic leaked to OnError: %v", diag)
	}
}

func TestProcess_Custom(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})
	_ = e.AddRule(Rule{
		Name:     "account",
		Strategy: StrategyCustom,
		Custom: func(v any) string {
			s := v.(string)
			return "acct:" + s[len(s)-2:]
		},
	})

	got := e.Process(map[string]any{"account": "9912345678"}).(map[string]any)
	if got["account"] != "acct:78" {
		t.Errorf("account = %q, want acct:78", got["account"])
	}
}

func TestProcess_HashStableWithinCall(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})
	_ = e.AddRule(Rule{Name: "userId", Strategy: StrategyHash})

	got := e.Process(map[string]any{
		"a": map[string]any{"userId": "u-1"},
		"b": map[string]any{"userId": "u-1"},
	}).(map[string]any)

	ha := got["a"].(map[string]any)["userId"]
	hb := got["b"].(map[string]any)["userId"]
	if ha != hb {
		t.Errorf("same value hashed differently within one call: %q vs %q", ha, hb)
	}
	if ha == "u-1" {
		t.Error("hash strategy left value unmasked")
	}
}

func TestProcess_HashUnlinkableAcrossCalls(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})
	_ = e.AddRule(Rule{Name: "userId", Strategy: StrategyHash})

	first := e.Process(map[string]any{"userId": "u-1"}).(map[string]any)
	second := e.Process(map[string]any{"userId": "u-1"}).(map[string]any)

	if first["userId"] == second["userId"] {
		t.Error("per-call salt produced linkable digests across calls")
	}
}

func TestProcess_RuleScopedSalt(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})
	_ = e.AddRule(Rule{Name: "userId", Strategy: StrategyHash, Salt: []byte("fixed")})

	first := e.Process(map[string]any{"userId": "u-1"}).(map[string]any)
	second := e.Process(map[string]any{"userId": "u-1"}).(map[string]any)

	if first["userId"] != second["userId"] {
		t.Errorf("rule-scoped salt should be stable: %q vs %q", first["userId"], second["userId"])
	}
}

func TestProcess_NonDataLeavesPassThrough(t *testing.T) {
	e, _ := New(Config{})

	fn := func() {}
	got := e.Process(map[string]any{
		"password": "secret123",
		"callback": fn,
	}).(map[string]any)

	if got["password"] != "*********" {
		t.Errorf("password = %q, want masked", got["password"])
	}
	if got["callback"] == nil {
		t.Error("function leaf was dropped")
	}
}

func TestProcess_TopLevelScalar(t *testing.T) {
	e, _ := New(Config{})

	// Email-shaped top-level value matches the shape rule.
	got := e.Process("test@example.com")
	if got != "t***@example.com" {
		t.Errorf("Process(scalar) = %q, want t***@example.com", got)
	}

	if got := e.Process("plain"); got != "plain" {
		t.Errorf("Process(plain scalar) = %q, want unchanged", got)
	}
}

func TestProcess_Nil(t *testing.T) {
	e, _ := New(Config{})

	if got := e.Process(nil); got != nil {
		t.Errorf("Process(nil) = %v, want nil", got)
	}
}

func TestProcess_Struct(t *testing.T) {
	e, _ := New(Config{})

	type creds struct {
		User     string
		Password string
	}
	got := e.Process(creds{User: "jo", Password: "hunter22"})

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Process(struct) returned %T, want map form", got)
	}
	if m["User"] != "jo" {
		t.Errorf("User = %q, want jo", m["User"])
	}
	if m["Password"] != "********" {
		t.Errorf("Password = %q, want masked", m["Password"])
	}
}

func TestProcess_PatternCacheSharedAcrossRules(t *testing.T) {
	e, _ := New(Config{DisableDefaults: true})

	_ = e.AddRule(Rule{Pattern: `^card`, Strategy: StrategyToken, Priority: 1})
	_ = e.AddRule(Rule{Pattern: `^card`, Strategy: StrategyFull, Priority: 2})

	if len(e.cache) != 1 {
		t.Errorf("cache size = %d, want 1 (same source compiled once)", len(e.cache))
	}
}

func TestProcess_ConcurrentWithAddRule(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		data := map[string]any{"password": "secret123", "note": "ok"}
		for i := 0; i < 500; i++ {
			out := e.Process(data).(map[string]any)
			if out["password"] != "*********" {
				t.Errorf("password = %v, want masked", out["password"])
				return
			}
		}
	}()

	// Registration keeps re-sorting the rule list while Process runs.
	for i := 0; i < 500; i++ {
		rule := Rule{Name: fmt.Sprintf("field%03d", i), Strategy: StrategyFull, Priority: i}
		if err := e.AddRule(rule); err != nil {
			t.Fatalf("AddRule() error = %v", err)
		}
	}
	<-done
}
