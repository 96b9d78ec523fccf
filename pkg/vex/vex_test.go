package vex

import (
	"bytes"
	"strings"
	"testing"
)

func runOK(t *testing.T, source string) string {
	t.Helper()
	m := New()
	var out bytes.Buffer
	m.SetOutput(&out)
	status, err := m.Interpret(source)
	if status != StatusOK {
		t.Fatalf("Interpret(%q) = %v, err = %v", source, status, err)
	}
	return out.String()
}

func TestArithmetic(t *testing.T) {
	out := runOK(t, `print 1 + 2 * 3;`)
	if strings.TrimSpace(out) != "7" {
		t.Errorf("expected 7, got %q", out)
	}
}

func TestFloatIntCoercion(t *testing.T) {
	out := runOK(t, `print 1 + 2.5;`)
	if strings.TrimSpace(out) != "3.5" {
		t.Errorf("expected 3.5, got %q", out)
	}
}

func TestStringConcatenation(t *testing.T) {
	out := runOK(t, `print "foo" + "bar";`)
	if strings.TrimSpace(out) != "foobar" {
		t.Errorf("expected foobar, got %q", out)
	}
}

func TestLetAndReassignment(t *testing.T) {
	out := runOK(t, `
		let x = 10;
		x = x + 5;
		print x;
	`)
	if strings.TrimSpace(out) != "15" {
		t.Errorf("expected 15, got %q", out)
	}
}

func TestIfElse(t *testing.T) {
	out := runOK(t, `
		let x = 3;
		if (x > 5) {
			print "big";
		} else {
			print "small";
		}
	`)
	if strings.TrimSpace(out) != "small" {
		t.Errorf("expected small, got %q", out)
	}
}

func TestWhileLoop(t *testing.T) {
	out := runOK(t, `
		let i = 0;
		let sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	if strings.TrimSpace(out) != "10" {
		t.Errorf("expected 10, got %q", out)
	}
}

func TestForInRange(t *testing.T) {
	out := runOK(t, `
		let sum = 0;
		for i in 0..5 {
			sum = sum + i;
		}
		print sum;
	`)
	if strings.TrimSpace(out) != "10" {
		t.Errorf("expected 10, got %q", out)
	}
}

func TestBreakAndContinue(t *testing.T) {
	out := runOK(t, `
		let out = 0;
		for i in 0..10 {
			if (i == 5) { break; }
			if (i == 2) { continue; }
			out = out + i;
		}
		print out;
	`)
	// 0+1+3+4 = 8 (2 skipped, loop stops before 5)
	if strings.TrimSpace(out) != "8" {
		t.Errorf("expected 8, got %q", out)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	out := runOK(t, `
		fn add(a, b) {
			return a + b;
		}
		print add(2, 3);
	`)
	if strings.TrimSpace(out) != "5" {
		t.Errorf("expected 5, got %q", out)
	}
}

func TestRecursiveFunction(t *testing.T) {
	out := runOK(t, `
		fn fact(n) {
			if (n <= 1) { return 1; }
			return n * fact(n - 1);
		}
		print fact(6);
	`)
	if strings.TrimSpace(out) != "720" {
		t.Errorf("expected 720, got %q", out)
	}
}

func TestClosureCapturesUpvalue(t *testing.T) {
	out := runOK(t, `
		fn makeCounter() {
			let count = 0;
			fn increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		let counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	if strings.TrimSpace(out) != "1\n2\n3" {
		t.Errorf("expected 1\\n2\\n3, got %q", out)
	}
}

func TestClassFieldsAndMethods(t *testing.T) {
	out := runOK(t, `
		class Point {
			fn init(x, y) {
				self.x = x;
				self.y = y;
			}
			fn sum() {
				return self.x + self.y;
			}
		}
		let p = Point(3, 4);
		print p.sum();
	`)
	if strings.TrimSpace(out) != "7" {
		t.Errorf("expected 7, got %q", out)
	}
}

func TestClassInheritanceAndSuper(t *testing.T) {
	out := runOK(t, `
		class Animal {
			fn init(name) {
				self.name = name;
			}
			fn speak() {
				return self.name + " makes a sound";
			}
		}
		class Dog : Animal {
			fn speak() {
				return super.speak() + "!";
			}
		}
		let d = Dog("Rex");
		print d.speak();
	`)
	if strings.TrimSpace(out) != "Rex makes a sound!" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestClassStaticBinding(t *testing.T) {
	out := runOK(t, `
		class Config {
			let limit = 100;
		}
		print Config.limit;
	`)
	if strings.TrimSpace(out) != "100" {
		t.Errorf("expected 100, got %q", out)
	}
}

func TestTailCallDoesNotOverflowFrameStack(t *testing.T) {
	out := runOK(t, `
		fn loop(n) {
			if (n <= 0) { return 0; }
			return loop(n - 1);
		}
		print loop(100000);
	`)
	if strings.TrimSpace(out) != "0" {
		t.Errorf("expected a deeply tail-recursive call to return 0 without overflowing, got %q", out)
	}
}

func TestCallableFieldInvokedViaDotCallSyntax(t *testing.T) {
	out := runOK(t, `
		fn sayHi() {
			return "hi";
		}
		class Holder {
			fn init(cb) {
				self.callback = cb;
			}
		}
		let h = Holder(sayHi);
		print h.callback();
	`)
	if strings.TrimSpace(out) != "hi" {
		t.Errorf("expected a closure stored in a field to be callable via dot-call syntax, got %q", out)
	}
}

func TestClassStaticAssignment(t *testing.T) {
	out := runOK(t, `
		class Config {
			let limit = 100;
		}
		Config.limit = 200;
		print Config.limit;
	`)
	if strings.TrimSpace(out) != "200" {
		t.Errorf("expected 200, got %q", out)
	}
}

func TestArrayLiteralAndIndex(t *testing.T) {
	out := runOK(t, `
		let xs = [1, 2, 3];
		print xs[1];
	`)
	if strings.TrimSpace(out) != "2" {
		t.Errorf("expected 2, got %q", out)
	}
}

func TestDictLiteralAndIndex(t *testing.T) {
	out := runOK(t, `
		let d = { "a": 1, "b": 2 };
		print d["b"];
	`)
	if strings.TrimSpace(out) != "2" {
		t.Errorf("expected 2, got %q", out)
	}
}

func TestTryCatchCatchesThrow(t *testing.T) {
	out := runOK(t, `
		try {
			throw "boom";
		} catch e {
			print "caught: " + e;
		}
	`)
	if strings.TrimSpace(out) != "caught: boom" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestUncaughtThrowIsRuntimeError(t *testing.T) {
	m := New()
	status, err := m.Interpret(`throw "fatal";`)
	if status != StatusRuntimeError {
		t.Fatalf("expected a runtime error, got status=%v err=%v", status, err)
	}
}

func TestLogicalShortCircuit(t *testing.T) {
	out := runOK(t, `
		fn sideEffect() {
			print "called";
			return true;
		}
		let r = false and sideEffect();
		print r;
	`)
	// sideEffect must never run: "called" should not appear.
	if strings.Contains(out, "called") {
		t.Errorf("expected short-circuit to skip the right operand, got %q", out)
	}
	if !strings.Contains(out, "false") {
		t.Errorf("expected false, got %q", out)
	}
}

func TestCompileErrorOnParseFailure(t *testing.T) {
	m := New()
	status, err := m.Interpret(`let = ;`)
	if status != StatusCompileError {
		t.Fatalf("expected a compile error, got status=%v err=%v", status, err)
	}
	if err == nil {
		t.Errorf("expected a non-nil error")
	}
}

func TestPersistentGlobalsAcrossInterpretCalls(t *testing.T) {
	m := New()
	var out bytes.Buffer
	m.SetOutput(&out)

	if status, err := m.Interpret(`let x = 41;`); status != StatusOK {
		t.Fatalf("first Interpret failed: %v %v", status, err)
	}
	if status, err := m.Interpret(`print x + 1;`); status != StatusOK {
		t.Fatalf("second Interpret failed: %v %v", status, err)
	}
	if strings.TrimSpace(out.String()) != "42" {
		t.Errorf("expected a global set in one Interpret call to be visible in the next, got %q", out.String())
	}
}

func TestHasImportsDetection(t *testing.T) {
	if !HasImports(`import "foo";`) {
		t.Errorf("expected HasImports to detect an import statement")
	}
	if HasImports(`let x = 1;`) {
		t.Errorf("expected HasImports to report false for import-free source")
	}
}

func TestBuiltinLenAndStr(t *testing.T) {
	out := runOK(t, `
		print len("hello");
		print str(42);
	`)
	want := "5\n42"
	if strings.TrimSpace(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}
